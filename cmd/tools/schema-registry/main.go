// cmd/tools/schema-registry/main.go
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"placement-tracker/internal/schema"
	"placement-tracker/pkg/registry"
)

const defaultPath = "configs/table-registry.json"

func main() {
	generateCmd := flag.NewFlagSet("generate", flag.ExitOnError)
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
	diffCmd := flag.NewFlagSet("diff", flag.ExitOnError)

	out := generateCmd.String("out", defaultPath, "Where to write the registry")
	validatePath := validateCmd.String("path", defaultPath, "Path to registry file")
	diffPath := diffCmd.String("path", defaultPath, "Path to registry file")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "generate":
		generateCmd.Parse(os.Args[2:])
		n, err := generate(*out)
		if err != nil {
			fmt.Printf("Error generating registry: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %d tables to %s\n", n, *out)

	case "validate":
		validateCmd.Parse(os.Args[2:])
		if err := validate(*validatePath); err != nil {
			fmt.Printf("Registry validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Registry validation passed.")

	case "diff":
		diffCmd.Parse(os.Args[2:])
		changes, err := diff(*diffPath)
		if err != nil {
			fmt.Printf("Error comparing registry: %v\n", err)
			os.Exit(1)
		}
		if len(changes) == 0 {
			fmt.Println("Registry matches the models.")
			return
		}
		for _, c := range changes {
			fmt.Println(c)
		}
		os.Exit(2)

	case "help":
		fallthrough
	default:
		help()
	}
}

func generate(path string) (int, error) {
	reg, err := schema.Describe()
	if err != nil {
		return 0, err
	}
	if problems := reg.Validate(); len(problems) > 0 {
		return 0, fmt.Errorf("models describe an inconsistent schema: %v", problems)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return 0, fmt.Errorf("failed to create directory: %w", err)
	}
	return len(reg.Tables), registry.SaveRegistry(path, reg)
}

func validate(path string) error {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	if len(reg.Tables) == 0 {
		return fmt.Errorf("registry contains no tables")
	}
	if problems := reg.Validate(); len(problems) > 0 {
		for _, p := range problems {
			fmt.Println("  " + p)
		}
		return fmt.Errorf("%d problems", len(problems))
	}
	fmt.Printf("Found %d tables.\n", len(reg.Tables))
	return nil
}

func diff(path string) ([]string, error) {
	saved, err := registry.LoadRegistry(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load registry: %w", err)
	}
	current, err := schema.Describe()
	if err != nil {
		return nil, err
	}
	return registry.Diff(saved, current), nil
}

func help() {
	fmt.Print(`
Usage: schema-registry <command> [flags]

Commands:
  generate  Write the table registry described by the models
  validate  Check a registry file for dangling keys and missing primary keys
  diff      Compare a registry file with the models
  help      Show this help message

Examples:
  schema-registry generate -out configs/table-registry.json
  schema-registry validate -path configs/table-registry.json
  schema-registry diff -path configs/table-registry.json

Use 'schema-registry <command> -h' for more information about a command.
`)
}
