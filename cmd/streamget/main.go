package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ytget/streamget"
	"github.com/ytget/streamget/client"
)

func main() {
	var (
		flagFormat     string
		flagExt        string
		flagOutput     string
		flagInfo       bool
		flagNoProgress bool
		flagTimeout    time.Duration
		flagRetries    int
		flagUA         string
		flagProxy      string
		flagRateLimit  string
		flagChunkSize  int64
	)

	flag.StringVar(&flagFormat, "format", "", "Format selector (e.g., 'itag=22', 'best', 'height<=480')")
	flag.StringVar(&flagExt, "ext", "", "Desired extension (e.g., 'mp4', 'webm')")
	flag.StringVar(&flagOutput, "output", "", "Output path (file or directory). Empty derives from title + MIME")
	flag.BoolVar(&flagInfo, "info", false, "Print available formats and exit without downloading")
	flag.BoolVar(&flagNoProgress, "no-progress", false, "Disable progress output")
	flag.DurationVar(&flagTimeout, "http-timeout", 30*time.Second, "HTTP timeout (e.g., 30s, 1m)")
	flag.IntVar(&flagRetries, "retries", 3, "HTTP retries for transient errors")
	flag.StringVar(&flagUA, "ua", "", "Override User-Agent header")
	flag.StringVar(&flagProxy, "proxy", "", "Proxy URL (http/https/socks)")
	flag.StringVar(&flagRateLimit, "rate-limit", "", "Download rate limit (e.g., 2MiB/s, 500KiB/s)")
	flag.Int64Var(&flagChunkSize, "chunk-size", 0, "Download chunk size in bytes (0 uses default)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <video_url>\n", os.Args[0])
		fmt.Fprintln(os.Stderr, "\nFlags:")
		flag.PrintDefaults()
	}

	flag.Parse()
	args := flag.Args()
	if len(args) < 1 {
		flag.Usage()
		os.Exit(2)
	}

	input := strings.TrimSpace(args[0])

	cfg := client.Config{Timeout: flagTimeout, Retries: flagRetries, UserAgent: flagUA, ProxyURL: flagProxy}
	c := client.NewWith(cfg)

	d := streamget.New().WithHTTPClient(c.HTTPClient)
	if flagFormat != "" || flagExt != "" {
		d = d.WithFormat(flagFormat, flagExt)
	}
	if flagOutput != "" {
		d = d.WithOutputPath(flagOutput)
	}
	if !flagNoProgress {
		d = d.WithProgress(func(p streamget.Progress) {
			if p.TotalSize > 0 {
				_, _ = fmt.Fprintf(os.Stdout, "Downloaded %.1f%%\r", p.Percent)
			}
		})
	}
	if bps := parseRate(flagRateLimit); bps > 0 {
		d = d.WithRateLimit(bps)
	}
	if flagChunkSize > 0 {
		d = d.WithChunkSize(flagChunkSize)
	}

	if flagInfo {
		_, info, err := d.ResolveURL(context.Background(), input)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stdout, "%s (%s, %ds)\n", info.Title, info.ID, info.Duration)
		for _, f := range info.Formats {
			fmt.Fprintf(os.Stdout, "  itag=%-4d %-20s %-10s %d bytes\n", f.Itag, f.MimeType, f.Quality, f.Size)
		}
		return
	}

	info, err := d.Download(context.Background(), input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	_, _ = fmt.Fprintf(os.Stdout, "\nSaved: %s\n", info.Title)
}

// parseRate parses strings like "2MiB/s", "500KiB/s" into bytes per second.
func parseRate(s string) int64 {
	s = strings.TrimSpace(strings.ToUpper(s))
	if s == "" {
		return 0
	}
	mul := int64(1)
	s = strings.TrimSuffix(s, "/S")
	s = strings.TrimSpace(s)
	sfx := ""
	for _, suf := range []string{"KIB", "MIB", "GIB", "KB", "MB", "GB"} {
		if strings.HasSuffix(s, suf) {
			sfx = suf
			s = strings.TrimSuffix(s, suf)
			break
		}
	}
	s = strings.TrimSpace(s)
	var val float64
	_, err := fmt.Sscanf(s, "%f", &val)
	if err != nil || val <= 0 {
		return 0
	}
	switch sfx {
	case "KIB":
		mul = 1024
	case "MIB":
		mul = 1024 * 1024
	case "GIB":
		mul = 1024 * 1024 * 1024
	case "KB":
		mul = 1000
	case "MB":
		mul = 1000 * 1000
	case "GB":
		mul = 1000 * 1000 * 1000
	}
	return int64(val * float64(mul))
}
