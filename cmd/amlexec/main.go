// Command amlexec loads a raw AML byte stream (a DSDT/SSDT body with the
// table header already stripped), optionally evaluates a control method,
// and prints the result. The resulting namespace can be dumped as CBOR for
// machine consumption.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/fxamacker/cbor/v2"
	"github.com/tliron/commonlog"

	"github.com/MirMohammadd/uACPI/aml"

	_ "github.com/tliron/commonlog/simple"
)

// config mirrors the optional TOML run configuration. Command-line flags
// override whatever the file sets.
type config struct {
	Table     string  `toml:"table"`
	Method    string  `toml:"method"`
	Args      []int64 `toml:"args"`
	Revision  int     `toml:"revision"`
	Verbosity int     `toml:"verbosity"`
	Dump      string  `toml:"dump"`
}

// nsNode is the CBOR shape of one namespace entry.
type nsNode struct {
	Name     string   `cbor:"name"`
	Kind     string   `cbor:"kind,omitempty"`
	Children []nsNode `cbor:"children,omitempty"`
}

func main() {
	var (
		configPath = flag.String("config", "", "TOML run configuration")
		tablePath  = flag.String("table", "", "raw AML table image")
		method     = flag.String("method", "", "absolute path of the method to evaluate")
		argList    = flag.String("args", "", "comma-separated integer method arguments")
		revision   = flag.Int("revision", 2, "table revision (1 selects 32-bit integers)")
		verbosity  = flag.Int("v", 0, "log verbosity")
		dumpPath   = flag.String("dump", "", "write a CBOR namespace snapshot to this file")
	)
	flag.Parse()

	cfg := config{Revision: 2}
	if *configPath != "" {
		if _, err := toml.DecodeFile(*configPath, &cfg); err != nil {
			fatalf("reading %s: %v", *configPath, err)
		}
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "table":
			cfg.Table = *tablePath
		case "method":
			cfg.Method = *method
		case "revision":
			cfg.Revision = *revision
		case "v":
			cfg.Verbosity = *verbosity
		case "dump":
			cfg.Dump = *dumpPath
		case "args":
			cfg.Args = nil
			for _, part := range strings.Split(*argList, ",") {
				val, err := strconv.ParseInt(strings.TrimSpace(part), 0, 64)
				if err != nil {
					fatalf("bad argument %q: %v", part, err)
				}
				cfg.Args = append(cfg.Args, val)
			}
		}
	})

	if cfg.Table == "" {
		fatalf("no table given; use -table or a config file")
	}

	commonlog.Configure(cfg.Verbosity, nil)

	code, err := os.ReadFile(cfg.Table)
	if err != nil {
		fatalf("reading table: %v", err)
	}

	vm := aml.NewVM()
	vm.SetRevision(uint8(cfg.Revision))

	if err := vm.LoadTable(code); err != nil {
		fatalf("loading table: %v", err)
	}

	if cfg.Method != "" {
		args := make([]*aml.Object, len(cfg.Args))
		for i, val := range cfg.Args {
			args[i] = aml.NewInteger(uint64(val))
		}

		ret, err := vm.EvaluatePath(cfg.Method, args...)
		if err != nil {
			fatalf("evaluating %s: %v", cfg.Method, err)
		}

		if ret == nil {
			fmt.Println("(no return value)")
		} else {
			fmt.Println(formatObject(ret.Unwrap()))
			ret.Release()
		}

		for _, arg := range args {
			arg.Release()
		}
	}

	if cfg.Dump != "" {
		snapshot := snapshotNode(vm.Namespace().Root())
		data, err := cbor.Marshal(snapshot)
		if err != nil {
			fatalf("encoding snapshot: %v", err)
		}
		if err := os.WriteFile(cfg.Dump, data, 0o644); err != nil {
			fatalf("writing snapshot: %v", err)
		}
	}
}

// snapshotNode converts a namespace subtree to its CBOR shape.
func snapshotNode(node *aml.NamespaceNode) nsNode {
	out := nsNode{Name: node.Name()}
	if obj := node.Object(); obj != nil {
		out.Kind = obj.Kind().String()
	}

	for _, child := range node.Children() {
		out.Children = append(out.Children, snapshotNode(child))
	}

	return out
}

// formatObject renders an evaluation result for the terminal.
func formatObject(obj *aml.Object) string {
	switch obj.Kind() {
	case aml.ObjectInteger:
		return fmt.Sprintf("Integer: 0x%X", obj.Integer())
	case aml.ObjectString:
		return fmt.Sprintf("String: %q", obj.StringValue())
	case aml.ObjectBuffer:
		return fmt.Sprintf("Buffer: % X", obj.Bytes())
	case aml.ObjectPackage:
		var sb strings.Builder
		fmt.Fprintf(&sb, "Package (%d elements):", obj.PackageLen())
		for i := 0; i < obj.PackageLen(); i++ {
			fmt.Fprintf(&sb, "\n  [%d] %s", i, formatObject(obj.PackageAt(i).Unwrap()))
		}
		return sb.String()
	default:
		return obj.Kind().String()
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "amlexec: "+format+"\n", args...)
	os.Exit(1)
}
