package buffer

import (
	"bufio"
	"io"
	"strings"
)

// CleanLen returns the length of line without its trailing line feed.
func CleanLen(line string) int {
	if strings.HasSuffix(line, "\n") {
		return len(line) - 1
	}
	return len(line)
}

// Clean returns line without its trailing line feed.
func Clean(line string) string {
	return line[:CleanLen(line)]
}

// Terminated reports whether line ends in a line feed, i.e. whether another
// line follows it.
func Terminated(line string) bool {
	return strings.HasSuffix(line, "\n")
}

// readLines splits r into raw lines. A carriage return right before a line
// feed is dropped. The result always has at least one element, and when the
// input ends in a line feed the last element is the empty appendable line.
func readLines(r io.Reader) ([]string, error) {
	br := bufio.NewReaderSize(r, 64*1024)
	lines := make([]string, 0, 64)
	for {
		s, err := br.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, err
		}
		if strings.HasSuffix(s, "\r\n") {
			s = s[:len(s)-2] + "\n"
		}
		if err == io.EOF {
			// Whatever follows the last line feed, possibly nothing.
			lines = append(lines, s)
			return lines, nil
		}
		lines = append(lines, s)
	}
}
