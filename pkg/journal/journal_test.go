package journal_test

import (
	"path"
	"testing"
	"time"

	"rrs/pkg/journal"

	"github.com/stretchr/testify/require"
)

func TestAppendAndRead(t *testing.T) {
	j, err := journal.Open(path.Join(t.TempDir(), "journal/recovery.log"))
	require.Nil(t, err)
	defer j.Close()

	require.Nil(t, j.Append(`{"seq":1}`))
	require.Nil(t, j.Append(`{"seq":2}`+"\n"))
	require.Nil(t, j.Append(`{"seq":3}`))

	first, err := j.FirstLine()
	require.Nil(t, err)
	require.Equal(t, `{"seq":1}`, first)

	last, err := j.LastLine()
	require.Nil(t, err)
	require.Equal(t, `{"seq":3}`, last)
}

func TestFollow(t *testing.T) {
	j, err := journal.Open(path.Join(t.TempDir(), "recovery.log"))
	require.Nil(t, err)
	defer j.Close()

	ch := make(chan string, 16)
	go func() {
		_ = j.Follow(ch)
	}()

	for i := 0; i < 5; i++ {
		require.Nil(t, j.Append(`{"seq":`+string(rune('0'+i))+`}`))
	}

	got := make([]string, 0, 5)
	timeout := time.After(5 * time.Second)
	for len(got) < 5 {
		select {
		case line := <-ch:
			got = append(got, line)
		case <-timeout:
			t.Fatalf("follow delivered %d of 5 lines", len(got))
		}
	}
	require.Equal(t, `{"seq":0}`, got[0])
	require.Equal(t, `{"seq":4}`, got[4])
}

func TestDrainBatches(t *testing.T) {
	j, err := journal.Open(path.Join(t.TempDir(), "recovery.log"))
	require.Nil(t, err)
	defer j.Close()

	ch := make(chan string, 64)
	for i := 0; i < 10; i++ {
		ch <- "line"
	}
	close(ch)

	total := 0
	err = j.Drain(ch, func(ss []string) error {
		total += len(ss)
		return nil
	})
	require.Nil(t, err)
	require.Equal(t, 10, total)
}
