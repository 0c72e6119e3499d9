// Package journal is the append-only line log recording recovery
// outcomes, tailed by the archiver.
package journal

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"rrs/pkg/config"
	"rrs/pkg/xlog"

	"github.com/nxadm/tail"
)

var logger = xlog.GetLogger()

// DefaultPath resolves the journal location under the configured data
// dir. The recovery worker appends here and the archiver tails it.
func DefaultPath() string {
	dataDir := "data"
	if config.Shared != nil && config.Shared.DataDir != "" {
		dataDir = config.Shared.DataDir
	}
	return filepath.Join(dataDir, "journal", "recovery.log")
}

type Journal struct {
	File *os.File
	Path string
}

func Open(path string) (j *Journal, err error) {
	j = &Journal{Path: path}

	err = os.MkdirAll(filepath.Dir(path), 0755)
	if err != nil {
		return
	}

	j.File, err = os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0644)
	if err != nil {
		return
	}

	return
}

func (j *Journal) Close() (err error) {
	if j.File == nil {
		return
	}

	err = j.File.Close()
	if err != nil {
		return
	}

	j.File = nil

	return
}

// Append writes one line, adding the newline if the caller left it off.
func (j *Journal) Append(s string) (err error) {
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}

	_, err = j.File.WriteString(s)
	if err != nil {
		logger.Errorf("journal append failed path:%s err:%s", j.Path, err)
		return
	}

	return
}

// LastLine reads the last non-empty line of the journal.
func (j *Journal) LastLine() (s string, err error) {
	stat, err := j.File.Stat()
	if err != nil {
		return
	}

	// the last line length is unknown, read the final 1024 bytes and cut
	// at the newlines
	var b []byte
	var off int64
	size := stat.Size()
	if size < 1024 {
		b = make([]byte, size)
	} else {
		b = make([]byte, 1024)
		off = size - 1024
	}

	_, err = j.File.ReadAt(b, off)
	if err != nil {
		return
	}

	txt := strings.Trim(string(b), " \n")
	txts := strings.Split(txt, "\n")

	if len(txts) == 0 {
		return
	}

	s = txts[len(txts)-1]

	return
}

// FirstLine reads the first non-empty line of the journal.
func (j *Journal) FirstLine() (s string, err error) {
	_, err = j.File.Seek(0, 0)
	if err != nil {
		return
	}

	reader := bufio.NewReader(j.File)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				break
			}
			return "", err
		}

		line = strings.TrimSpace(line)
		if line != "" {
			return line, nil
		}
	}

	return "", io.EOF
}

// Follow streams lines into ch as they are appended, surviving rotation.
func (j *Journal) Follow(ch chan<- string) (err error) {
	ta, err := tail.TailFile(j.Path, tail.Config{
		Follow:        true,
		ReOpen:        true,
		CompleteLines: true,
	})
	if err != nil {
		return
	}

	for line := range ta.Lines {
		if line.Err != nil {
			// a broken line means the tail lost its position, stop rather
			// than risk reordering
			err = line.Err
			return
		}

		ch <- line.Text
	}

	return
}

// Drain reads lines off ch and hands them to the batch handler, sizing
// each batch by what is already waiting, up to 100 lines.
func (j *Journal) Drain(ch <-chan string, batch func([]string) error) (err error) {
	logger.Infof("journal drain start path:%s", j.Path)
	defer func() {
		if err != nil {
			logger.Errorf("journal drain stopped path:%s err:%s", j.Path, err)
		} else {
			logger.Infof("journal drain end path:%s", j.Path)
		}
	}()

	ss := make([]string, 100)

	for {
		size := 1
		if len(ch) > 1 {
			if len(ch) < len(ss) {
				size = len(ch)
			} else {
				size = len(ss)
			}
		}

		var ok bool
		for i := 0; i < size; i++ {
			ss[i], ok = <-ch
			if !ok {
				return
			}
		}

		err = batch(ss[:size])
		if err != nil {
			return
		}
	}
}
