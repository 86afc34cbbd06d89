package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"

	"lstree/internal/config"
	"lstree/internal/lister"
	"lstree/internal/logging"
	"lstree/internal/model"
	"lstree/internal/objfs"
	"lstree/internal/ratio"
	"lstree/internal/report"
	"lstree/internal/tui"
	"lstree/internal/walk"
	"lstree/internal/web"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
	"github.com/tcnksm/go-latest"
	"golang.org/x/term"
)

func checkUpdate(currentVer string) {
	githubTag := &latest.GithubTag{
		Owner:      "lstree",
		Repository: "lstree",
	}

	res, err := latest.Check(githubTag, currentVer)
	if err != nil {
		return // Silently fail
	}

	if res.Outdated {
		fmt.Printf("\n✨ A new version is available: %s (you have %s)\n", res.Current, currentVer)
		fmt.Println("👉 Download it from https://github.com/lstree/lstree/releases")
	} else {
		fmt.Printf("✅ You are using the latest version: %s\n", currentVer)
	}
}

// cliFlags collects the parsed command line.
type cliFlags struct {
	json, cbor, report, verbose bool
	tui, web, sweep, pre        bool
	noFollow, rule3             bool
	output, port, s3            string
	maxDepth                    int
	skip                        []string
}

func main() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: lstree [options] [path]\n\n")
		fmt.Fprintf(os.Stderr, "lstree walks a directory tree and lists the files of every directory,\n")
		fmt.Fprintf(os.Stderr, "subdirectories before their parent.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  lstree src               # Path and file names of every directory\n")
		fmt.Fprintf(os.Stderr, "  lstree --pre -d 2 .      # Parents first, two levels deep\n")
		fmt.Fprintf(os.Stderr, "  lstree -r -o r.txt src   # Save a summary report to file\n")
		fmt.Fprintf(os.Stderr, "  lstree --s3 media/2024   # Walk a bucket prefix\n")
		fmt.Fprintf(os.Stderr, "  lstree --rule3 2 3 1     # Rule of three: 2 * 3 / 1\n")
		fmt.Fprintf(os.Stderr, "  lstree --rule3 -- -2 3 1 # Negative numbers follow --\n")
	}

	var f cliFlags
	bindFlags(pflag.CommandLine, &f)
	versionFlag := pflag.BoolP("version", "V", false, "Print version information")
	updateFlag := pflag.BoolP("update", "u", false, "Check for latest version")
	helpFlag := pflag.BoolP("help", "h", false, "Show this help message")
	pflag.Parse()

	if *helpFlag {
		pflag.Usage()
		return
	}

	if *versionFlag {
		fmt.Printf("lstree version %s\n", model.Version)
		return
	}

	if *updateFlag {
		checkUpdate(model.Version)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, f, pflag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// bindFlags registers the lstree options on fs.
func bindFlags(fs *pflag.FlagSet, f *cliFlags) {
	fs.BoolVarP(&f.json, "json", "j", false, "Print all listings as indented JSON")
	fs.BoolVar(&f.cbor, "cbor", false, "Write all listings as CBOR (use with --output)")
	fs.BoolVarP(&f.report, "report", "r", false, "Print a summary report of the tree")
	fs.StringVarP(&f.output, "output", "o", "", "Save report, JSON or CBOR to the specified file")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "List file names in the report and log to stderr")
	fs.BoolVarP(&f.tui, "tui", "t", false, "Browse the tree interactively")
	fs.BoolVarP(&f.web, "web", "w", false, "Start Web Mode on http://localhost:<port>")
	fs.StringVar(&f.port, "port", "", "Web port (default LSTREE_PORT or 8080)")
	fs.BoolVar(&f.sweep, "sweep", false, "Recurse silently; for a file path list its siblings")
	fs.BoolVar(&f.pre, "pre", false, "Print each directory before its subdirectories")
	fs.IntVarP(&f.maxDepth, "max-depth", "d", -1, "Do not descend below this depth (0 = unlimited)")
	fs.BoolVar(&f.noFollow, "no-follow", false, "Treat symlinked directories as files")
	fs.StringSliceVar(&f.skip, "skip", nil, "Directory names to list but not descend into (repeatable)")
	fs.StringVar(&f.s3, "s3", "", "Walk BUCKET[/PREFIX] on the configured S3 endpoint")
	fs.BoolVar(&f.rule3, "rule3", false, "Treat the arguments as mult1 mult2 div and print mult1*mult2/div")
}

func run(ctx context.Context, f cliFlags, args []string) error {
	if f.rule3 {
		return runRule3Mode(os.Stdout, args)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if f.verbose || cfg.Debug {
		logging.Bind(log.New(os.Stderr, "", log.Ltime), isTerminal(os.Stderr))
	}

	root := cfg.Root
	switch len(args) {
	case 0:
	case 1:
		root = args[0]
	default:
		return fmt.Errorf("expected at most one path, got %d", len(args))
	}
	root = model.ExpandTilde(root)

	opts, err := walkOptions(cfg, f)
	if err != nil {
		return err
	}
	logging.Logf("main", "root=%s order=%s depth=%d follow=%t skip=%v",
		root, opts.Order, opts.MaxDepth, opts.FollowSymlinks, opts.SkipDirs)

	if f.web {
		port := cfg.Port
		if f.port != "" {
			port = f.port
		}
		return web.StartServer(web.Options{Port: port, Root: root, Walk: opts, CacheSize: cfg.CacheSize})
	}

	if f.sweep {
		return lister.Sweep(ctx, os.Stdout, root, opts)
	}

	w, err := openWalker(ctx, cfg, f.s3, root, opts)
	if err != nil {
		return err
	}

	switch {
	case f.tui:
		return runTuiMode(w)
	case f.report:
		return runReportMode(ctx, w, f.output, f.verbose)
	case f.json:
		return runExportMode(ctx, w, report.FormatJSON, opts.Order, f.output)
	case f.cbor:
		return runExportMode(ctx, w, report.FormatCBOR, opts.Order, f.output)
	}
	return lister.Print(ctx, os.Stdout, w)
}

// walkOptions layers the flags over the configured walk defaults.
func walkOptions(cfg *config.Config, f cliFlags) (walk.Options, error) {
	opts := walk.Options{
		Order:          walk.PostOrder,
		MaxDepth:       cfg.MaxDepth,
		FollowSymlinks: cfg.FollowSymlinks,
		SkipDirs:       cfg.SkipDirs,
	}
	if f.pre || f.tui {
		opts.Order = walk.PreOrder
	}
	if f.maxDepth >= 0 {
		opts.MaxDepth = f.maxDepth
	} else if f.maxDepth != -1 {
		return opts, fmt.Errorf("max-depth must not be negative, got %d", f.maxDepth)
	}
	if f.noFollow {
		opts.FollowSymlinks = false
	}
	if len(f.skip) > 0 {
		opts.SkipDirs = append(append([]string{}, opts.SkipDirs...), f.skip...)
	}
	return opts, nil
}

// openWalker walks the S3 location when one is given, the local root otherwise.
func openWalker(ctx context.Context, cfg *config.Config, s3Loc, root string, opts walk.Options) (*walk.Walker, error) {
	if s3Loc == "" {
		return walk.NewLocal(root, opts), nil
	}
	bucket, prefix, err := objfs.ParseLocation(s3Loc)
	if err != nil {
		return nil, err
	}
	fsys, err := objfs.New(objfs.Config{
		Endpoint:  cfg.S3.Endpoint,
		Region:    cfg.S3.Region,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		Bucket:    bucket,
		Prefix:    prefix,
		UseSSL:    cfg.S3.UseSSL,
	})
	if err != nil {
		return nil, err
	}
	logging.Logf("main", "walking s3 location %s on %s", fsys.Location(), cfg.S3.Endpoint)
	return walk.New(fsys.WithContext(ctx), fsys.Location(), opts), nil
}

func runRule3Mode(out io.Writer, args []string) error {
	mult1, mult2, div, err := ratio.ParseArgs(args)
	if err != nil {
		return err
	}
	result, err := ratio.RuleOfThree(mult1, mult2, div)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, ratio.Format(result))
	return err
}

func runReportMode(ctx context.Context, w *walk.Walker, outputFile string, verbose bool) error {
	listings, err := walk.Collect(ctx, w)
	if err != nil {
		return err
	}

	color := outputFile == "" && isTerminal(os.Stdout)
	text := report.Generate(w.Display("."), listings, report.Options{Verbose: verbose, Color: color})

	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(text), 0644); err != nil {
			return fmt.Errorf("writing report to %s: %w", outputFile, err)
		}
		fmt.Printf("Report saved to %s\n", outputFile)
		return nil
	}
	fmt.Println(text)
	return nil
}

func runExportMode(ctx context.Context, w *walk.Walker, format report.Format, order walk.Order, outputFile string) error {
	listings, err := walk.Collect(ctx, w)
	if err != nil {
		return err
	}
	doc := report.NewDocument(w.Display("."), order.String(), listings)

	if outputFile == "" {
		if format == report.FormatCBOR && isTerminal(os.Stdout) {
			return errors.New("refusing to write CBOR to a terminal; use --output")
		}
		return report.Encode(os.Stdout, format, doc)
	}

	var buf bytes.Buffer
	if err := report.Encode(&buf, format, doc); err != nil {
		return err
	}
	if err := os.WriteFile(outputFile, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing %s to %s: %w", strings.ToUpper(string(format)), outputFile, err)
	}
	fmt.Printf("%s saved to %s\n", strings.ToUpper(string(format)), outputFile)
	return nil
}

func runTuiMode(w *walk.Walker) error {
	m := tui.InitialModel(w.Display("."), w)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
