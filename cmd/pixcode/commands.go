package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/nurycaroline/pix"
	"github.com/nurycaroline/pix/qr"
)

func encodeCmd(args []string, e *env) error {
	var (
		key, name, city, amount string
		description, reference  string
		info                    string
		foldAccents, skipChecks bool
	)

	fs, common := newFlagSet("encode", "encode --key <key> --name <name> --city <city> [flags]", e)
	fs.StringVar(&key, "key", "", "PIX key: CPF, CNPJ, e-mail, +55 phone or random key (default: merchant.key)")
	fs.StringVar(&name, "name", "", "merchant name, up to 25 characters (default: merchant.name)")
	fs.StringVar(&city, "city", "", "merchant city, up to 15 characters (default: merchant.city)")
	fs.StringVar(&amount, "amount", "", "amount in BRL, e.g. 10.50 (omit for an open amount)")
	fs.StringVar(&description, "description", "", "reference label shown to the payer")
	fs.StringVar(&reference, "reference", "", "reference ID for logs; not written to the code")
	fs.StringVar(&info, "info", "", "free text inside the merchant account template")
	fs.BoolVar(&foldAccents, "fold-accents", false, "strip accents from text fields (default: encode.fold_accents)")
	fs.BoolVar(&skipChecks, "skip-validation", false, "encode without checking the key, name and city")

	if help, err := parse(fs, args); help || err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("%w: unexpected argument %q", errUsage, fs.Arg(0))
	}

	cfg, logger, err := common.load(e)
	if err != nil {
		return err
	}

	if key == "" {
		key = cfg.Merchant.Key
	}
	if name == "" {
		name = cfg.Merchant.Name
	}
	if city == "" {
		city = cfg.Merchant.City
	}
	if !fs.Changed("fold-accents") {
		foldAccents = cfg.Encode.FoldAccents
	}

	var opts []pix.EncodeOption
	if foldAccents {
		opts = append(opts, pix.WithASCIIFolding())
	}

	var value decimal.Decimal
	if amount != "" {
		if value, err = decimal.NewFromString(amount); err != nil {
			return fmt.Errorf("%w: %q", pix.ErrInvalidAmount, amount)
		}
	}

	b := pix.NewBuilder(opts...)
	defer b.Release()
	b.Merchant(name, city).
		AmountDecimal(value).
		Description(description).
		ReferenceID(reference).
		Info(info)

	var code string
	if skipChecks {
		req := b.Request()
		req.Key = key
		code, err = pix.Encode(req, opts...)
	} else {
		code, err = b.Key(key).Build()
	}
	if err != nil {
		return err
	}
	logger.Debug("encoded PIX code", "request", b.Request())

	out := struct {
		Code string `json:"code" yaml:"code" cbor:"code"`
		CRC  string `json:"crc" yaml:"crc" cbor:"crc"`
	}{Code: code, CRC: code[len(code)-4:]}

	return writeOutput(e.stdout, cfg.Output, out, func(w io.Writer) error {
		_, err := fmt.Fprintln(w, code)
		return err
	})
}

func decodeCmd(args []string, e *env) error {
	var fromStdin, strict bool

	fs, common := newFlagSet("decode", "decode [--stdin] [code...]", e)
	fs.BoolVar(&fromStdin, "stdin", false, "read codes from standard input, one per line")
	fs.BoolVar(&strict, "strict", false, "treat a checksum mismatch as an error (default: decode.strict_checksum)")

	if help, err := parse(fs, args); help || err != nil {
		return err
	}

	cfg, logger, err := common.load(e)
	if err != nil {
		return err
	}
	if !fs.Changed("strict") {
		strict = cfg.Decode.StrictChecksum
	}

	codes := fs.Args()
	if fromStdin {
		lines, err := readLines(e.stdin)
		if err != nil {
			return err
		}
		codes = append(codes, lines...)
	}
	if len(codes) == 0 {
		fs.Usage()
		return errUsage
	}

	decodeOpts := []pix.DecodeOption{pix.WithLogger(logger)}
	if strict {
		decodeOpts = append(decodeOpts, pix.WithStrictChecksum())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	errs := make([]error, len(codes))
	processor := pix.NewProcessor(
		pix.WithConcurrency(cfg.Batch.Concurrency),
		pix.WithDecodeOptions(decodeOpts...),
		pix.WithErrorHandler(func(index int, err error) {
			errs[index] = err
			logger.Debug("PIX decode failed", "index", index, "error", err)
		}),
	)

	payloads, batchErr := processor.DecodeBatch(ctx, codes)
	if errors.Is(batchErr, context.Canceled) {
		return batchErr
	}

	results := make([]codeResult, len(codes))
	for i, code := range codes {
		results[i] = codeResult{Code: code, Payload: payloads[i]}
		if errs[i] != nil {
			results[i].Error = errs[i].Error()
		}
	}

	err = writeOutput(e.stdout, cfg.Output, results, func(w io.Writer) error {
		for i, r := range results {
			if i > 0 {
				fmt.Fprintln(w)
			}
			if len(results) > 1 {
				fmt.Fprintf(w, "# %d\n", i+1)
			}
			if r.Payload == nil {
				fmt.Fprintf(w, "error: %s\n", r.Error)
				continue
			}
			writePayloadText(w, r.Payload)
		}
		return nil
	})
	if err != nil {
		return err
	}
	return batchErr
}

func inspectCmd(args []string, e *env) error {
	fs, common := newFlagSet("inspect", "inspect <code>", e)
	if help, err := parse(fs, args); help || err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return errUsage
	}

	cfg, _, err := common.load(e)
	if err != nil {
		return err
	}

	code := fs.Arg(0)
	fields, err := pix.Describe(code)
	if err != nil {
		return err
	}

	return writeOutput(e.stdout, cfg.Output, fields, func(w io.Writer) error {
		writeFieldsText(w, fields, "")
		if pix.VerifyCRC(code) {
			fmt.Fprintln(w, "checksum: valid")
		} else {
			fmt.Fprintf(w, "checksum: invalid (expected %s)\n", expectedCRC(code))
		}
		for _, problem := range pix.CheckLayout(fields) {
			fmt.Fprintf(w, "layout: %v\n", problem)
		}
		return nil
	})
}

// expectedCRC is the checksum the code should end with.
func expectedCRC(code string) string {
	code = strings.TrimSpace(code)
	body := []rune(code)
	if len(body) >= 4 {
		body = body[:len(body)-4]
	}
	return pix.CRC16(string(body))
}

// keyResult describes one key for classify and validate.
type keyResult struct {
	Key   string      `json:"key" yaml:"key" cbor:"key"`
	Type  pix.KeyType `json:"type" yaml:"type" cbor:"type"`
	Label string      `json:"label" yaml:"label" cbor:"label"`
	Valid bool        `json:"valid" yaml:"valid" cbor:"valid"`
	Error string      `json:"error,omitempty" yaml:"error,omitempty" cbor:"error,omitempty"`
}

func checkKeys(keys []string) []keyResult {
	results := make([]keyResult, 0, len(keys))
	for _, key := range keys {
		kt := pix.Classify(key)
		r := keyResult{Key: key, Type: kt, Label: kt.String(), Valid: true}
		if err := pix.ValidateKey(key); err != nil {
			r.Valid = false
			r.Error = err.Error()
		}
		results = append(results, r)
	}
	return results
}

func classifyCmd(args []string, e *env) error {
	fs, common := newFlagSet("classify", "classify <key...>", e)
	if help, err := parse(fs, args); help || err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errUsage
	}

	cfg, _, err := common.load(e)
	if err != nil {
		return err
	}

	results := checkKeys(fs.Args())
	return writeOutput(e.stdout, cfg.Output, results, func(w io.Writer) error {
		for _, r := range results {
			fmt.Fprintf(w, "%s\t%s\n", r.Key, r.Label)
		}
		return nil
	})
}

func validateCmd(args []string, e *env) error {
	fs, common := newFlagSet("validate", "validate <key...>", e)
	if help, err := parse(fs, args); help || err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errUsage
	}

	cfg, _, err := common.load(e)
	if err != nil {
		return err
	}

	results := checkKeys(fs.Args())
	invalid := 0
	for _, r := range results {
		if !r.Valid {
			invalid++
		}
	}

	err = writeOutput(e.stdout, cfg.Output, results, func(w io.Writer) error {
		for _, r := range results {
			if r.Valid {
				fmt.Fprintf(w, "%s\tok (%s)\n", r.Key, r.Label)
			} else {
				fmt.Fprintf(w, "%s\t%s\n", r.Key, r.Error)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	if invalid > 0 {
		return fmt.Errorf("%w: %d of %d keys failed validation", pix.ErrInvalidKey, invalid, len(results))
	}
	return nil
}

func crcCmd(args []string, e *env) error {
	var verify bool

	fs, common := newFlagSet("crc", "crc [--verify] <text...>", e)
	fs.BoolVar(&verify, "verify", false, "check that each argument ends with its own checksum")
	if help, err := parse(fs, args); help || err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errUsage
	}

	cfg, _, err := common.load(e)
	if err != nil {
		return err
	}

	type crcResult struct {
		Input string `json:"input" yaml:"input" cbor:"input"`
		CRC   string `json:"crc" yaml:"crc" cbor:"crc"`
		Valid *bool  `json:"valid,omitempty" yaml:"valid,omitempty" cbor:"valid,omitempty"`
	}

	var failed int
	results := make([]crcResult, 0, fs.NArg())
	for _, input := range fs.Args() {
		r := crcResult{Input: input, CRC: pix.CRC16(input)}
		if verify {
			ok := pix.VerifyCRC(input)
			r.CRC = expectedCRC(input)
			r.Valid = &ok
			if !ok {
				failed++
			}
		}
		results = append(results, r)
	}

	err = writeOutput(e.stdout, cfg.Output, results, func(w io.Writer) error {
		for _, r := range results {
			switch {
			case r.Valid == nil:
				fmt.Fprintln(w, r.CRC)
			case *r.Valid:
				fmt.Fprintf(w, "%s\tvalid\n", r.CRC)
			default:
				fmt.Fprintf(w, "%s\tinvalid\n", r.CRC)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d inputs", pix.ErrChecksumMismatch, failed, len(results))
	}
	return nil
}

func qrCmd(args []string, e *env) error {
	var file string
	var size int

	fs, common := newFlagSet("qr", "qr [--file out.png] [--size px] <code>", e)
	fs.StringVarP(&file, "file", "f", "", "write a PNG image instead of printing to the terminal")
	fs.IntVar(&size, "size", 0, "PNG edge length in pixels (default: qr.size)")
	if help, err := parse(fs, args); help || err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return errUsage
	}

	cfg, logger, err := common.load(e)
	if err != nil {
		return err
	}
	if size <= 0 {
		size = cfg.QR.Size
	}

	code := strings.TrimSpace(fs.Arg(0))
	if !pix.VerifyCRC(code) {
		logger.Warn("rendering a code with an invalid checksum", "expected", expectedCRC(code))
	}

	if file == "" {
		text, err := qr.Terminal(code)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(e.stdout, text)
		return err
	}

	png, err := qr.Render(code, size)
	if err != nil {
		return err
	}
	if err := os.WriteFile(file, png, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", file, err)
	}
	logger.Info("wrote QR image", "path", file, "size", size)
	return nil
}

func scanCmd(args []string, e *env) error {
	var strict bool

	fs, common := newFlagSet("scan", "scan <image...>", e)
	fs.BoolVar(&strict, "strict", false, "treat a checksum mismatch as an error (default: decode.strict_checksum)")
	if help, err := parse(fs, args); help || err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errUsage
	}

	cfg, logger, err := common.load(e)
	if err != nil {
		return err
	}
	if !fs.Changed("strict") {
		strict = cfg.Decode.StrictChecksum
	}

	opts := []pix.DecodeOption{pix.WithLogger(logger)}
	if strict {
		opts = append(opts, pix.WithStrictChecksum())
	}
	processor := pix.NewProcessor(pix.WithDecodeOptions(opts...), pix.WithProcessorLogger(logger))

	var firstErr error
	results := make([]codeResult, 0, fs.NArg())
	for _, path := range fs.Args() {
		code, err := scanFile(path)
		if err == nil {
			var p *pix.Payload
			p, err = processor.Process(code)
			results = append(results, codeResult{Code: code, Payload: p})
		} else {
			results = append(results, codeResult{Code: path})
		}
		if err != nil {
			results[len(results)-1].Error = err.Error()
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	err = writeOutput(e.stdout, cfg.Output, results, func(w io.Writer) error {
		for i, r := range results {
			if i > 0 {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "# %s\n", fs.Arg(i))
			if r.Payload == nil {
				fmt.Fprintf(w, "error: %s\n", r.Error)
				continue
			}
			fmt.Fprintln(w, r.Code)
			writePayloadText(w, r.Payload)
		}
		return nil
	})
	if err != nil {
		return err
	}
	return firstErr
}

func scanFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return qr.Scan(f)
}

// readLines returns the non-blank lines of r, trimmed.
func readLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	return lines, nil
}
