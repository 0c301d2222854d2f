// Command slc is the driver (D1, SPEC_FULL.md §4.9): it reads a
// source file named by -path, runs it through slc.Compile, and prints
// the three streams spec.md §6 names (assembly, symbol-table report,
// diagnostics), grounded on the teacher's compiler/main.go
// (flag.String("path", ...), reading the file, calling the library
// Compile function).
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"softwares_for_struct_lang"
)

func main() {
	path := flag.String("path", "", "path to a source file to compile")
	flag.Parse()
	if *path == "" {
		log.Fatal("slc: -path is required")
	}

	src, err := os.ReadFile(*path)
	if err != nil {
		log.Fatalf("slc: reading %s: %v", *path, err)
	}

	result, err := slc.Compile(string(src))
	if err != nil {
		log.Fatalf("slc: %v", err)
	}

	fmt.Println(result.Report)
	if len(result.Diagnostics) > 0 {
		fmt.Println(slc.DiagnosticsText(result.Diagnostics))
	}
	if result.Accepted {
		fmt.Println(result.Assembly)
	} else {
		log.Printf("slc: accept=false, assembly not emitted")
	}
}
