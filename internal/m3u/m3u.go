// Package m3u writes extended M3U playlists.
package m3u

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// Unknown is the duration of entries whose length was not measured.
const Unknown time.Duration = -1

type item struct {
	absFilePath string
	dur         time.Duration
}

type Playlist struct {
	w     io.Writer
	items []item
}

func NewPlaylist(w io.Writer) *Playlist {
	return &Playlist{w: w}
}

// Add appends a file. Durations are written in whole seconds, rounded down.
// A negative duration is written as -1.
func (p *Playlist) Add(absFilePath string, dur time.Duration) {
	p.items = append(p.items, item{absFilePath, dur})
}

func (p *Playlist) Len() int {
	return len(p.items)
}

func (p *Playlist) Write() error {
	bw := bufio.NewWriter(p.w)
	_, _ = bw.WriteString("#EXTM3U\n")
	for _, it := range p.items {
		seconds := -1
		if it.dur >= 0 {
			seconds = int(it.dur / time.Second)
		}
		title := strings.TrimSuffix(filepath.Base(it.absFilePath), filepath.Ext(it.absFilePath))
		_, _ = fmt.Fprintf(bw, "#EXTINF:%d,%s\n", seconds, title)
		_, _ = fmt.Fprintf(bw, "file://%s\n", escape(it.absFilePath))
	}
	return bw.Flush()
}

// escape percent-encodes the NFD form of input outside of ASCII.
func escape(input string) string {
	s := norm.NFD.String(input)
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c > 127 || c == '%' || c == ' ' || c == '#':
			_, _ = fmt.Fprintf(&b, "%%%02X", c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
