// cmd/tools/catalogue-tool/main.go
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"policyfund-workers/internal/common/validation"
	"policyfund-workers/internal/diagnosis"
	"policyfund-workers/internal/funds"
	"policyfund-workers/internal/models"
)

var errUsage = errors.New("usage")

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			help(os.Stderr)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	if len(args) < 1 {
		return errUsage
	}

	switch args[0] {
	case "validate":
		fs := flag.NewFlagSet("validate", flag.ContinueOnError)
		path := fs.String("path", "configs/funds.yaml", "Path to catalogue file")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		c, err := funds.LoadFile(*path)
		if err != nil {
			return fmt.Errorf("catalogue validation failed: %w", err)
		}
		fmt.Fprintf(out, "Catalogue %s valid: %d funds.\n", c.Version(), c.Len())
		return nil

	case "list":
		fs := flag.NewFlagSet("list", flag.ContinueOnError)
		path := fs.String("path", "", "Path to catalogue file (built-in catalogue when empty)")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		c, err := open(*path)
		if err != nil {
			return err
		}
		return list(out, c)

	case "dump":
		// Writes the built-in catalogue in file format, the starting point for a custom catalogue.
		data, err := funds.Marshal(funds.DefaultCatalogue())
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err

	case "diagnose":
		fs := flag.NewFlagSet("diagnose", flag.ContinueOnError)
		path := fs.String("path", "", "Path to catalogue file (built-in catalogue when empty)")
		profilePath := fs.String("profile", "", "Path to applicant profile JSON")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if *profilePath == "" {
			return fmt.Errorf("-profile is required for diagnose")
		}
		c, err := open(*path)
		if err != nil {
			return err
		}
		p, err := readProfile(*profilePath)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(diagnosis.Diagnose(c, p))

	case "help":
		help(out)
		return nil

	default:
		return errUsage
	}
}

func open(path string) (*funds.Catalogue, error) {
	if path == "" {
		return funds.DefaultCatalogue(), nil
	}
	return funds.LoadFile(path)
}

func list(out io.Writer, c *funds.Catalogue) error {
	fmt.Fprintf(out, "Catalogue version %s\n\n", c.Version())
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tCATEGORY\tMAX AMOUNT\tCONDITIONS")
	for _, d := range c.Funds() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", d.Name, d.Category, funds.FormatWon(d.MaxAmount), len(d.Conditions))
	}
	return tw.Flush()
}

func readProfile(path string) (models.Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.Profile{}, fmt.Errorf("read profile: %w", err)
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return models.Profile{}, fmt.Errorf("parse profile: %w", err)
	}
	if err := validation.ProfileSchema.Validate(fields); err != nil {
		return models.Profile{}, err
	}
	return models.ProfileFromFields(fields), nil
}

func help(w io.Writer) {
	fmt.Fprintln(w, "Usage: catalogue-tool <command> [arguments]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  validate -path <file>                    Validate a catalogue file")
	fmt.Fprintln(w, "  list [-path <file>]                      List funds of a catalogue")
	fmt.Fprintln(w, "  dump                                     Print the built-in catalogue as YAML")
	fmt.Fprintln(w, "  diagnose -profile <file> [-path <file>]  Diagnose an applicant profile")
	fmt.Fprintln(w, "  help                                     Show this help message")
}
