package main

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/poiesic/datamill/curate"
	"github.com/poiesic/datamill/ingestion"
)

var questions = []string{
	"How do I reset my password?",
	"Where can I download my invoice?",
	"Why was my card declined?",
	"Can I change the email on my account?",
	"How do I cancel my subscription?",
	"Is there a student discount?",
	"The app crashes when I open settings.",
	"How long does shipping take?",
	"Can I export my data as CSV?",
	"What is your refund policy?",
	"How do I enable two-factor authentication?",
	"My order arrived damaged.",
	"Do you ship internationally?",
	"How can I add a team member?",
	"The sync has been stuck for an hour.",
	"Where do I find my API key?",
}

var answers = []string{
	"Use the 'Forgot password' link on the sign-in page and follow the email.",
	"Invoices are listed under Billing, then History.",
	"Your bank declined the charge; please contact them or try another card.",
	"Open Profile, choose Email, and confirm the change from your new address.",
	"Go to Billing and choose Cancel plan; access lasts until the period ends.",
	"Yes, verified students get 50% off the annual plan.",
	"Please update to the latest version; the crash was fixed last week.",
	"Standard shipping takes 3 to 5 business days.",
	"Yes, choose Export under Settings and pick CSV.",
	"Refunds are available within 30 days of purchase.",
	"Open Security and scan the QR code with an authenticator app.",
	"Sorry about that! Reply with a photo and we will send a replacement.",
	"We ship to over 40 countries; rates are shown at checkout.",
	"Admins can invite members from the Team page.",
	"Signing out and back in restarts the sync.",
	"API keys live under Developer settings.",
}

var (
	format     = flag.String("format", "json", "output format: json, csv, or txt")
	count      = flag.Int("count", 100, "number of records to write")
	dupEvery   = flag.Int("dup-every", 0, "repeat the previous record every N records (0 disables)")
	noiseEvery = flag.Int("noise-every", 0, "write a noisy output every N records (0 disables)")
	emptyEvery = flag.Int("empty-every", 0, "write an empty output every N records (0 disables)")
	outPath    = flag.String("out", "", "output file (default raw/synthetic.<format>)")
	configPath = flag.String("config", "", "also write a dataset build config for the output file")
	version    = flag.String("version-name", "synthetic-v1", "version_name written to -config")
	seedFile   = flag.String("src", "", "file of tab-separated input/output seed pairs")
)

func init() {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
}

type pair struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

// pairsFromFile returns an iterator over the tab-separated pairs in a file.
// Lines without a tab get a generated answer.
func pairsFromFile(filename string) (iter.Seq[pair], error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	return func(yield func(pair) bool) {
		defer f.Close()
		scanner := bufio.NewScanner(f)
		for i := 0; scanner.Scan(); i++ {
			in, out, ok := strings.Cut(scanner.Text(), "\t")
			if !ok {
				out = answers[i%len(answers)]
			}
			if !yield(pair{Input: in, Output: out}) {
				return
			}
		}
	}, nil
}

// builtinPairs cycles through the built-in questions and answers forever.
func builtinPairs() iter.Seq[pair] {
	return func(yield func(pair) bool) {
		for i := 0; ; i++ {
			p := pair{
				Input:  fmt.Sprintf("%s (ticket %d)", questions[i%len(questions)], i),
				Output: answers[i%len(answers)],
			}
			if !yield(p) {
				return
			}
		}
	}
}

// synthesize takes n pairs from source and injects duplicates, noise, and
// empty outputs at the configured intervals. Record numbers start at 1.
func synthesize(source iter.Seq[pair], n, dupEvery, noiseEvery, emptyEvery int) []pair {
	records := make([]pair, 0, n)
	next, stop := iter.Pull(source)
	defer stop()

	for i := 1; i <= n; i++ {
		switch {
		case dupEvery > 0 && i%dupEvery == 0 && len(records) > 0:
			records = append(records, records[len(records)-1])
			continue
		case emptyEvery > 0 && i%emptyEvery == 0:
			p, ok := next()
			if !ok {
				return records
			}
			p.Output = ""
			records = append(records, p)
			continue
		}

		p, ok := next()
		if !ok {
			return records
		}
		if noiseEvery > 0 && i%noiseEvery == 0 {
			p.Output += " " + strings.Repeat("!", curate.DefaultNoiseMaxRepeat+2)
		}
		records = append(records, p)
	}
	return records
}

func writeJSON(w io.Writer, records []pair) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(records)
}

func writeCSV(w io.Writer, records []pair) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"input", "output"}); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write([]string{r.Input, r.Output}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// writeText writes one input<TAB>output line per record. Tabs and line
// breaks inside the text would change the record boundaries, so they are
// replaced with spaces.
func writeText(w io.Writer, records []pair) error {
	clean := strings.NewReplacer("\t", " ", "\r", " ", "\n", " ")
	bw := bufio.NewWriter(w)
	for _, r := range records {
		if _, err := fmt.Fprintf(bw, "%s\t%s\n", clean.Replace(r.Input), clean.Replace(r.Output)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

var writers = map[string]func(io.Writer, []pair) error{
	"json": writeJSON,
	"csv":  writeCSV,
	"txt":  writeText,
}

// writeBuildConfig writes a dataset build config that ingests inputPath
// with curation enabled.
func writeBuildConfig(path, inputPath, versionName string) error {
	doc := map[string]any{
		ingestion.KeyInputPath:     inputPath,
		ingestion.KeySource:        strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath)),
		ingestion.KeyVersionName:   versionName,
		curate.KeyMinLength:        2,
		curate.KeyRemoveDuplicates: true,
		curate.KeyFilterNoise:      true,
	}
	data, err := yaml.Parser().Marshal(doc)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func main() {
	flag.Parse()

	write, ok := writers[*format]
	if !ok {
		slog.Error("unknown format", "format", *format)
		os.Exit(2)
	}
	if *count < 0 {
		slog.Error("count must not be negative", "count", *count)
		os.Exit(2)
	}

	source := builtinPairs()
	if *seedFile != "" {
		var err error
		source, err = pairsFromFile(*seedFile)
		if err != nil {
			panic(err)
		}
	}
	records := synthesize(source, *count, *dupEvery, *noiseEvery, *emptyEvery)

	path := *outPath
	if path == "" {
		path = filepath.Join("raw", "synthetic."+*format)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		panic(err)
	}
	f, err := os.Create(path)
	if err != nil {
		panic(err)
	}
	if err := write(f, records); err != nil {
		f.Close()
		panic(err)
	}
	if err := f.Close(); err != nil {
		panic(err)
	}
	slog.Info("wrote synthetic dataset", "path", path, "format", *format, "records", len(records))

	if *configPath != "" {
		abs, err := filepath.Abs(path)
		if err != nil {
			panic(err)
		}
		if err := writeBuildConfig(*configPath, abs, *version); err != nil {
			panic(err)
		}
		slog.Info("wrote build config", "path", *configPath, "version", *version)
	}
}
