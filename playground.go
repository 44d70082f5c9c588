package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/golang/glog"

	"github.com/vegaluisjose/backend-playground/backend"
	"github.com/vegaluisjose/backend-playground/expr"
	"github.com/vegaluisjose/backend-playground/x86real"
)

var (
	program    = flag.String("expr", "sub(add(sub(0, 6), 2), add(sub(0, 6), 2))", "Expression to compile.")
	targetName = flag.String("target", x86real.TargetName, "Target to compile for.")
	listing    = flag.Bool("listing", false, "Print the vreg listing with def/use sets before the assembly.")
)

func main() {
	flag.Parse()
	defer glog.Flush()

	tree, err := expr.Parse(*program)
	if err != nil {
		log.Fatalf("Invalid expression: %v", err)
	}

	t, err := backend.Get(*targetName)
	if err != nil {
		log.Fatalf("Couldn't Get() target: %v", err)
	}

	res, err := backend.Compile(tree, t)
	if err != nil {
		log.Fatalf("Compilation failed: %v", err)
	}

	if *listing {
		for _, cell := range res.Block.Cells() {
			fmt.Printf(";   %s\n", cell)
		}
	}

	if err := res.Render(t, os.Stdout); err != nil {
		log.Fatalf("Couldn't render assembly: %v", err)
	}
}
