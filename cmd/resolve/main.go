package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/idna"

	"github.com/rootwalk/resolv"
)

var (
	verbose bool
	res     = resolver.NewResolver()
)

func init() {
	flag.BoolVar(&verbose, "v", false, "print verbose info to the console")
}

func logV(format string, args ...interface{}) {
	if !verbose {
		return
	}
	fmt.Fprintf(os.Stderr, format, args...)
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [arguments] <name> [type]\n\nAvailable arguments:\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}
	flag.Parse()
	rrType := "A"
	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
	} else if len(args) > 1 {
		rrType, args = args[len(args)-1], args[:len(args)-1]
	}

	var wg sync.WaitGroup
	start := time.Now()
	for _, name := range args {
		wg.Add(1)
		go func(name, rrType string) {
			defer wg.Done()
			query(name, rrType)
		}(name, rrType)
	}
	wg.Wait()
	logV(";; total elapsed: %s\n", time.Since(start))
}

func query(name, rrType string) {
	start := time.Now()
	qname, err := idna.ToASCII(name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid IDN domain name: %s\n", name)
		os.Exit(1)
	}

	qtype := typeByName(strings.ToUpper(rrType))
	msg, err := res.Query(qname, qtype)

	fmt.Println()
	if msg != nil {
		for _, rr := range msg.AN {
			fmt.Println(rr.String())
		}
	}
	switch {
	case err != nil:
		fmt.Printf(";; %s  %s: %s\n", strings.ToUpper(rrType), name, err)
	case msg != nil && len(msg.AN) > 0:
		fmt.Printf(";; TRUE  %s\n", name)
	default:
		fmt.Printf(";; FALSE %s\n", name)
	}

	logV(";; elapsed: %s\n", time.Since(start))
}

func typeByName(name string) resolver.Type {
	switch name {
	case "A":
		return resolver.TypeA
	case "AAAA":
		return resolver.TypeAAAA
	case "NS":
		return resolver.TypeNS
	case "CNAME":
		return resolver.TypeCNAME
	case "SOA":
		return resolver.TypeSOA
	case "PTR":
		return resolver.TypePTR
	case "MX":
		return resolver.TypeMX
	case "ANY":
		return resolver.TypeANY
	default:
		return resolver.TypeA
	}
}
