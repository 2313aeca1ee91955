package batchscan

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/poiesic/catscan/core"
	"github.com/poiesic/catscan/search"
	"github.com/stretchr/testify/assert"
)

// steppingClock advances one second per call.
func steppingClock() func() time.Time {
	now := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		now = now.Add(time.Second)
		return now
	}
}

func found() Result {
	return Result{URL: "https://a.example", Pages: search.NewResultSet(&core.CompanyPage{Page: core.Page{Id: 1, Name: "A"}})}
}

func TestProgress_ReportsEveryN(t *testing.T) {
	var buf bytes.Buffer
	p := newProgress(&buf, 4, 2, steppingClock())

	p.Add(found())
	assert.Empty(t, buf.String())

	p.Add(Result{URL: "https://b.example", Pages: search.NewResultSet()})
	assert.Contains(t, buf.String(), "Checked: 2/4 (50.0%) - 1 with matches, 0 failed")

	p.Add(Result{URL: "bad", Err: errors.New("invalid")})
	p.Add(found())
	assert.Contains(t, buf.String(), "Checked: 4/4 (100.0%) - 2 with matches, 1 failed")
}

func TestProgress_Done(t *testing.T) {
	var buf bytes.Buffer
	p := newProgress(&buf, 100, 10, steppingClock())

	p.Add(found())
	p.Done()
	out := buf.String()
	assert.Contains(t, out, "1/100")
	assert.True(t, bytes.HasSuffix(buf.Bytes(), []byte("\n")))

	p.Add(found())
	p.Done()
	assert.Equal(t, out, buf.String(), "calls after Done are ignored")
}

func TestProgress_ZeroTotal(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf, 0, 0)
	p.Done()
	assert.Contains(t, buf.String(), "0/0 (100.0%)")
}
