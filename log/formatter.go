// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package log

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"
)

const defaultTimestampFormat = time.RFC3339

var baseTimestamp = time.Now()

type levelStyle struct {
	glyph string
	style lipgloss.Style
}

func badge(bg string) lipgloss.Style {
	return lipgloss.NewStyle().
		Background(lipgloss.Color(bg)).
		Foreground(lipgloss.AdaptiveColor{Light: "15", Dark: "0"})
}

var levelStyles = map[logrus.Level]levelStyle{
	logrus.PanicLevel: {"X", badge("9")},
	logrus.FatalLevel: {"!", badge("9")},
	logrus.ErrorLevel: {"E", badge("9")},
	logrus.WarnLevel:  {"W", badge("11")},
	logrus.InfoLevel:  {"i", badge("8")},
	logrus.DebugLevel: {"D", badge("12")},
	logrus.TraceLevel: {"T", lipgloss.NewStyle().Background(lipgloss.Color("0")).Foreground(lipgloss.Color("15"))},
}

// TextFormatter renders entries as a single line, with a coloured level badge
// when writing to a terminal and as logfmt-like key/value pairs otherwise.
type TextFormatter struct {
	// ForceColors bypasses the terminal check.
	ForceColors bool

	// DisableColors disables colours even on a terminal.
	DisableColors bool

	// ForceFormatting uses the badge layout for non-terminal output.
	ForceFormatting bool

	// DisableTimestamp omits the timestamp.
	DisableTimestamp bool

	// FullTimestamp prints the wall clock instead of the seconds elapsed since
	// start.
	FullTimestamp bool

	// TimestampFormat is used when a full timestamp is printed.
	TimestampFormat string

	isTerminal bool
	once       sync.Once
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return term.IsTerminal(int(f.Fd()))
}

// Format implements logrus.Formatter.
func (f *TextFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	f.once.Do(func() {
		if entry.Logger != nil {
			f.isTerminal = isTerminal(entry.Logger.Out)
		}
	})

	b := entry.Buffer
	if b == nil {
		b = &bytes.Buffer{}
	}

	keys := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tsFormat := f.TimestampFormat
	if tsFormat == "" {
		tsFormat = defaultTimestampFormat
	}

	if f.ForceFormatting || f.isTerminal {
		f.formatBadge(b, entry, keys, tsFormat)
	} else {
		f.formatPlain(b, entry, keys, tsFormat)
	}

	b.WriteByte('\n')
	return b.Bytes(), nil
}

func (f *TextFormatter) formatBadge(b *bytes.Buffer, entry *logrus.Entry, keys []string, tsFormat string) {
	ls, ok := levelStyles[entry.Level]
	if !ok {
		ls = levelStyles[logrus.DebugLevel]
	}

	render := ls.style.Render
	if (!f.ForceColors && !f.isTerminal) || f.DisableColors {
		render = func(strs ...string) string { return strings.Join(strs, " ") }
	}

	b.WriteString(render(" " + ls.glyph + " "))

	if !f.DisableTimestamp {
		if f.FullTimestamp {
			fmt.Fprintf(b, " %s", entry.Time.Format(tsFormat))
		} else {
			fmt.Fprintf(b, " [%04d]", int(time.Since(baseTimestamp)/time.Second))
		}
	}

	fmt.Fprintf(b, " %s", entry.Message)

	for _, k := range keys {
		fmt.Fprintf(b, " %s=%+v", render(k), entry.Data[k])
	}
}

func (f *TextFormatter) formatPlain(b *bytes.Buffer, entry *logrus.Entry, keys []string, tsFormat string) {
	pairs := make([]string, 0, len(keys)+3)

	if !f.DisableTimestamp {
		pairs = append(pairs, "time="+quote(entry.Time.Format(tsFormat)))
	}

	pairs = append(pairs, "level="+entry.Level.String())

	if entry.Message != "" {
		pairs = append(pairs, "msg="+quote(entry.Message))
	}

	for _, k := range keys {
		key := k
		switch k {
		case "time", "level", "msg":
			key = "fields." + k
		}

		pairs = append(pairs, key+"="+quote(fmt.Sprint(entry.Data[k])))
	}

	b.WriteString(strings.Join(pairs, " "))
}

func quote(s string) string {
	if s == "" {
		return `""`
	}

	for _, ch := range s {
		if !((ch >= 'a' && ch <= 'z') ||
			(ch >= 'A' && ch <= 'Z') ||
			(ch >= '0' && ch <= '9') ||
			ch == '-' || ch == '.' || ch == '/' || ch == '_' || ch == ':') {
			return fmt.Sprintf("%q", s)
		}
	}

	return s
}
