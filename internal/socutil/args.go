package socutil

import (
	"strconv"
	"strings"
)

// QuotedArgs joins args with spaces, quoting any that contain whitespace or
// are empty, as a shell would need them.
func QuotedArgs(args []string) string {
	n := len(args)
	for _, arg := range args {
		n += 2 * len(arg)
	}
	return string(AppendQuotedArgs(make([]byte, 0, n), args))
}

// AppendQuotedArgs appends args to b as QuotedArgs would format them.
func AppendQuotedArgs(b []byte, args []string) []byte {
	for i, arg := range args {
		if i > 0 {
			b = append(b, ' ')
		}
		if arg == "" || strings.ContainsAny(arg, " \t\n\"'") {
			b = strconv.AppendQuote(b, arg)
		} else {
			b = append(b, arg...)
		}
	}
	return b
}
