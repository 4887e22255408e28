package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"nikand.dev/go/bpt"
)

type config struct {
	n, m, rounds int
	seed         uint32

	kinds []bpt.Kind

	csv string

	insert, search, delete string

	dump bool
}

var tl *tlog.Logger

func main() {
	var c config

	var seed uint
	var impl string
	var verbose bool

	flag.IntVar(&c.n, "n", 100000, "number of keys (ignored with -insert)")
	flag.IntVar(&c.m, "m", 64, "tree order")
	flag.IntVar(&c.rounds, "rounds", 5, "rounds per store kind")
	flag.UintVar(&seed, "seed", 1, "shuffle seed")
	flag.StringVar(&impl, "impl", "array", "node store: array, list, skip or all")
	flag.StringVar(&c.csv, "csv", "", "csv output file (stdout if empty)")
	flag.StringVar(&c.insert, "insert", "", "file with keys to insert")
	flag.StringVar(&c.search, "search", "", "file with keys to search (inserted keys if empty)")
	flag.StringVar(&c.delete, "delete", "", "file with keys to delete (inserted keys if empty)")
	flag.BoolVar(&c.dump, "dump", false, "dump the tree to stderr after the first round inserts")
	flag.BoolVar(&verbose, "v", false, "log rounds and tree structural events to stderr")

	flag.Usage = usage
	flag.Parse()

	c.seed = uint32(seed)

	if verbose {
		tl = tlog.New(tlog.NewConsoleWriter(os.Stderr, tlog.LstdFlags))
		bpt.SetLogger(tl)
	}

	err := c.parseKinds(impl)
	if err == nil {
		err = c.validate()
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n\n", err)
		usage()
		os.Exit(1)
	}

	err = run(&c, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "Usage:\n  %s [-n N] [-m ORDER] [-rounds R] [-seed S] [-impl array|list|skip|all] [-csv out.csv]\n", os.Args[0])
	fmt.Fprintf(flag.CommandLine.Output(), "  %s -insert FILE [-search FILE] [-delete FILE] ...\n\n", os.Args[0])

	flag.PrintDefaults()
}

func (c *config) parseKinds(s string) error {
	if strings.EqualFold(s, "all") {
		c.kinds = bpt.Kinds
		return nil
	}

	for _, s := range strings.Split(s, ",") {
		k, err := bpt.ParseKind(strings.TrimSpace(s))
		if err != nil {
			return errors.Wrap(err, "impl")
		}

		c.kinds = append(c.kinds, k)
	}

	return nil
}

func (c *config) validate() error {
	if c.insert == "" && (c.search != "" || c.delete != "") {
		return errors.New("-search and -delete need -insert")
	}

	if c.insert == "" && c.n <= 0 {
		return errors.New("bad -n: %d", c.n)
	}

	if c.m < 3 {
		return errors.New("bad -m: %d (must be at least 3)", c.m)
	}

	if c.rounds <= 0 {
		return errors.New("bad -rounds: %d", c.rounds)
	}

	return nil
}
