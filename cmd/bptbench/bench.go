package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"tlog.app/go/errors"

	"nikand.dev/go/bpt"
)

const (
	keysSalt   = 0xA341316C
	querySalt  = 0x9e3779b9
	deleteSalt = 0xC8013EA4

	roundMul = 2654435761
)

type (
	workload struct {
		keys, queries, del []int64

		generated bool
	}

	result struct {
		kind  bpt.Kind
		round int

		insert, search, delete time.Duration

		found int
	}
)

var header = []string{"impl", "M", "N", "round", "insert_ns", "search_ns", "delete_ns", "found_count"}

func run(c *config, stdout io.Writer) (err error) {
	w := stdout

	if c.csv != "" {
		var f *os.File

		f, err = os.Create(c.csv)
		if err != nil {
			return errors.Wrap(err, "create csv")
		}

		defer func() {
			e := f.Close()
			if err == nil && e != nil {
				err = errors.Wrap(e, "close csv")
			}
		}()

		w = f
	}

	cw := csv.NewWriter(w)

	err = cw.Write(header)
	if err != nil {
		return errors.Wrap(err, "write header")
	}

	for _, k := range c.kinds {
		wl, err := c.workload()
		if err != nil {
			return err
		}

		for r := 1; r <= c.rounds; r++ {
			res, err := c.round(k, r, wl)
			if err != nil {
				return errors.Wrap(err, "%v round %d", k, r)
			}

			if tl != nil {
				tl.Printw("round", "impl", k, "M", c.m, "N", len(wl.keys), "round", r,
					"insert", res.insert, "search", res.search, "delete", res.delete, "found", res.found)
			}

			err = cw.Write(res.record(c.m, len(wl.keys)))
			if err != nil {
				return errors.Wrap(err, "write row")
			}

			if wl.generated {
				wl.reshuffle(c.seed ^ uint32(r)*roundMul)
			}
		}
	}

	cw.Flush()

	err = cw.Error()
	if err != nil {
		return errors.Wrap(err, "flush csv")
	}

	return nil
}

func (c *config) round(k bpt.Kind, r int, wl *workload) (res result, err error) {
	res.kind = k
	res.round = r

	t, err := bpt.New(c.m, k)
	if err != nil {
		return res, err
	}

	defer t.Destroy()

	start := time.Now()

	for _, key := range wl.keys {
		err = t.Insert(key)
		if err != nil {
			return res, errors.Wrap(err, "insert %d", key)
		}
	}

	res.insert = time.Since(start)

	if c.dump && r == 1 {
		fmt.Fprintf(os.Stderr, "%v: %v", k, t.Dump())
	}

	start = time.Now()

	for _, key := range wl.queries {
		if t.Search(key) {
			res.found++
		}
	}

	res.search = time.Since(start)

	start = time.Now()

	for _, key := range wl.del {
		t.Delete(key)
	}

	res.delete = time.Since(start)

	if wl.generated && t.Len() != 0 {
		return res, errors.New("tree is not empty after deletion: %d keys left", t.Len())
	}

	return res, nil
}

func (res result) record(m, n int) []string {
	return []string{
		strconv.Itoa(int(res.kind)),
		strconv.Itoa(m),
		strconv.Itoa(n),
		strconv.Itoa(res.round),
		strconv.FormatInt(res.insert.Nanoseconds(), 10),
		strconv.FormatInt(res.search.Nanoseconds(), 10),
		strconv.FormatInt(res.delete.Nanoseconds(), 10),
		strconv.Itoa(res.found),
	}
}

// workload builds the key sequences.
// Generated keys are 0..n-1, queries are half present and half absent.
func (c *config) workload() (wl *workload, err error) {
	if c.insert == "" {
		wl = generate(c.n, c.seed)

		return wl, nil
	}

	wl = &workload{}

	wl.keys, err = readFile(c.insert)
	if err != nil {
		return nil, err
	}

	wl.queries = wl.keys
	wl.del = wl.keys

	if c.search != "" {
		wl.queries, err = readFile(c.search)
		if err != nil {
			return nil, err
		}
	}

	if c.delete != "" {
		wl.del, err = readFile(c.delete)
		if err != nil {
			return nil, err
		}
	}

	return wl, nil
}

func generate(n int, seed uint32) *workload {
	wl := &workload{
		keys:      make([]int64, n),
		queries:   make([]int64, n),
		del:       make([]int64, n),
		generated: true,
	}

	for i := 0; i < n; i++ {
		wl.keys[i] = int64(i)
		wl.del[i] = int64(i)

		if i%2 == 0 {
			wl.queries[i] = int64(i / 2)
		} else {
			wl.queries[i] = int64(n + i/2)
		}
	}

	wl.reshuffle(seed)

	return wl
}

func (wl *workload) reshuffle(seed uint32) {
	shuffle(wl.keys, seed^keysSalt)
	shuffle(wl.queries, seed^querySalt)
	shuffle(wl.del, seed^deleteSalt)
}

// shuffle is a Fisher-Yates shuffle driven by xorshift32.
func shuffle(a []int64, seed uint32) {
	x := seed
	if x == 0 {
		x = 2463534242
	}

	for i := len(a) - 1; i > 0; i-- {
		x ^= x << 13
		x ^= x >> 17
		x ^= x << 5

		j := int(x % uint32(i+1))

		a[i], a[j] = a[j], a[i]
	}
}
