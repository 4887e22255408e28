package main

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"strconv"

	"tlog.app/go/errors"
)

func readFile(name string) ([]int64, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, errors.Wrap(err, "open")
	}

	defer f.Close()

	r, err := readKeys(f)
	if err != nil {
		return nil, errors.Wrap(err, "%v", name)
	}

	return r, nil
}

// readKeys parses whitespace separated integers.
// Lines starting with # are skipped.
func readKeys(r io.Reader) (keys []int64, err error) {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64<<10), 16<<20)

	for line := 1; s.Scan(); line++ {
		l := bytes.TrimSpace(s.Bytes())

		if len(l) == 0 || l[0] == '#' {
			continue
		}

		for _, f := range bytes.Fields(l) {
			k, err := strconv.ParseInt(string(f), 10, 64)
			if err != nil {
				return nil, errors.Wrap(err, "line %d", line)
			}

			keys = append(keys, k)
		}
	}

	err = s.Err()
	if err != nil {
		return nil, errors.Wrap(err, "read")
	}

	return keys, nil
}
