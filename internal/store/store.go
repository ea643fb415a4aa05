// Package store provides the input and output streams of coursemark
// commands: named files, standard input and output, or memory.
//
// Writes are pending until closed: a file is only replaced once its new
// content has been fully written, and Cleanup discards an unfinished write.
package store

import (
	"bytes"
	"errors"
	"io"
	"io/ioutil"
	"os"
	"strings"

	"github.com/google/renameio"
)

var (
	// ErrExists is returned by Create when the stream already exists.
	ErrExists = errors.New("stream already exists")

	// ErrNotExists is returned by Open and Update when the stream does not
	// exist.
	ErrNotExists = errors.New("stream does not exist")

	errBufferClosed = errors.New("write to closed buffer")
)

// Store is a single named stream of content.
type Store interface {
	Open() (io.ReadCloser, error)
	Create() (PendingWriter, error)
	Update() (PendingWriter, error)
	String() string
}

// PendingWriter is a write whose content is only committed by Close.
// Cleanup must always be called, and discards the write if Close was not.
type PendingWriter interface {
	io.WriteCloser
	Cleanup() error
}

// For returns the store named by a command line argument: "-" or "" means
// the given standard streams, anything else is a file path.
func For(name string, in io.Reader, out io.Writer) Store {
	if name == "-" || name == "" {
		return Stdio{In: in, Out: out}
	}
	return &File{Name: name}
}

// ReadAll reads the whole content of s.
func ReadAll(s Store) (_ []byte, rerr error) {
	r, err := s.Open()
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := r.Close(); rerr == nil {
			rerr = cerr
		}
	}()
	return ioutil.ReadAll(r)
}

// Write creates s, or updates it when overwrite is true and it already
// exists, with whatever fn writes. Nothing is committed if fn fails.
func Write(s Store, overwrite bool, fn func(w io.Writer) error) (rerr error) {
	w, err := s.Create()
	if errors.Is(err, ErrExists) && overwrite {
		w, err = s.Update()
	}
	if err != nil {
		return err
	}
	defer func() {
		if cerr := w.Cleanup(); rerr == nil {
			rerr = cerr
		}
	}()
	if err := fn(w); err != nil {
		return err
	}
	return w.Close()
}

// Memory is an in-memory store.
type Memory struct {
	cur     string
	defined bool
}

// NewMemory returns a memory store already holding content.
func NewMemory(content string) *Memory {
	return &Memory{cur: content, defined: true}
}

func (ms *Memory) String() string { return "<memory>" }

// Content returns the last committed content, and whether there is any.
func (ms *Memory) Content() (string, bool) { return ms.cur, ms.defined }

// Open reads the committed content.
func (ms *Memory) Open() (io.ReadCloser, error) {
	if !ms.defined {
		return nil, ErrNotExists
	}
	return ioutil.NopCloser(strings.NewReader(ms.cur)), nil
}

// Create starts the first write.
func (ms *Memory) Create() (PendingWriter, error) {
	if ms.defined {
		return nil, ErrExists
	}
	return ms.pend(), nil
}

// Update starts a replacing write.
func (ms *Memory) Update() (PendingWriter, error) {
	if !ms.defined {
		return nil, ErrNotExists
	}
	return ms.pend(), nil
}

func (ms *Memory) pend() *pendingBuffer {
	const minSize = 1024
	pb := &pendingBuffer{sink: ms.set}
	if n := len(ms.cur); n > minSize {
		pb.buf.Grow(n)
	} else {
		pb.buf.Grow(minSize)
	}
	return pb
}

func (ms *Memory) set(content string) error {
	ms.cur = content
	ms.defined = true
	return nil
}

type pendingBuffer struct {
	buf    bytes.Buffer
	closed bool
	sink   func(string) error
}

func (pb *pendingBuffer) Write(p []byte) (int, error) {
	if pb.closed {
		return 0, errBufferClosed
	}
	return pb.buf.Write(p)
}

func (pb *pendingBuffer) Close() error {
	if pb.closed {
		return nil
	}
	pb.closed = true
	return pb.sink(pb.buf.String())
}

func (pb *pendingBuffer) Cleanup() error {
	pb.closed = true
	return nil
}

// File is a store backed by a named file; updates atomically replace it.
type File struct {
	Name string
}

func (fs *File) String() string { return fs.Name }

func (fs *File) exists() (bool, error) {
	_, err := os.Stat(fs.Name)
	if os.IsNotExist(err) {
		return false, nil
	}
	return err == nil, err
}

// Open opens the file for reading.
func (fs *File) Open() (io.ReadCloser, error) {
	f, err := os.Open(fs.Name)
	if os.IsNotExist(err) {
		return nil, ErrNotExists
	}
	return f, err
}

// Create exclusively creates the file.
func (fs *File) Create() (PendingWriter, error) {
	f, err := os.OpenFile(fs.Name, os.O_EXCL|os.O_CREATE|os.O_WRONLY, 0666)
	if os.IsExist(err) {
		return nil, ErrExists
	}
	if err != nil {
		return nil, err
	}
	return &pendingCreateFile{File: f}, nil
}

// Update writes a temporary file beside the existing one, renamed over it
// on Close.
func (fs *File) Update() (PendingWriter, error) {
	if ok, err := fs.exists(); err != nil {
		return nil, err
	} else if !ok {
		return nil, ErrNotExists
	}
	t, err := renameio.TempFile("", fs.Name)
	if err != nil {
		return nil, err
	}
	return &pendingUpdateFile{PendingFile: t}, nil
}

type pendingUpdateFile struct {
	*renameio.PendingFile
	closed bool
}

func (uf *pendingUpdateFile) Close() error {
	if uf.closed {
		return nil
	}
	err := uf.CloseAtomicallyReplace()
	uf.closed = err == nil
	return err
}

func (uf *pendingUpdateFile) Cleanup() error {
	if uf.closed {
		return nil
	}
	uf.closed = true
	return uf.PendingFile.Cleanup()
}

type pendingCreateFile struct {
	*os.File
	closed bool
}

func (cf *pendingCreateFile) Close() error {
	if cf.closed {
		return nil
	}
	err := cf.File.Close()
	cf.closed = err == nil
	return err
}

func (cf *pendingCreateFile) Cleanup() error {
	if cf.closed {
		return nil
	}
	err := os.Remove(cf.Name())
	if cerr := cf.File.Close(); err == nil {
		err = cerr
	}
	cf.closed = true
	return err
}

// Stdio reads standard input and writes standard output. Standard output
// always exists, so Create and Update both write to it directly.
type Stdio struct {
	In  io.Reader
	Out io.Writer
}

func (Stdio) String() string { return "-" }

// Open reads In; closing it does not close In.
func (s Stdio) Open() (io.ReadCloser, error) {
	if s.In == nil {
		return nil, ErrNotExists
	}
	return ioutil.NopCloser(s.In), nil
}

// Create writes through to Out.
func (s Stdio) Create() (PendingWriter, error) { return s.Update() }

// Update writes through to Out.
func (s Stdio) Update() (PendingWriter, error) {
	if s.Out == nil {
		return nil, ErrNotExists
	}
	return passThrough{s.Out}, nil
}

type passThrough struct{ io.Writer }

func (passThrough) Close() error   { return nil }
func (passThrough) Cleanup() error { return nil }
