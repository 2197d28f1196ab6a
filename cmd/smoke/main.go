package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/scoregraph/scoregraph/internal/smoketest"
	"github.com/scoregraph/scoregraph/pkg/logger"
)

const runTimeout = 2 * time.Minute

func main() {
	var (
		baseURL = flag.String("url", smoketest.DefaultBaseURL, "Base URL of the engine")
		timeout = flag.Duration("timeout", smoketest.DefaultTimeout, "HTTP request timeout")
		topicA  = flag.String("topic-a", "Light", "First seeded topic")
		topicB  = flag.String("topic-b", "Human Body", "Second seeded topic")
		grade   = flag.String("grade", "6", "Seeded grade")
		verbose = flag.Bool("verbose", false, "Log each scenario as it passes")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	cfg := &smoketest.Config{
		BaseURL: *baseURL,
		Timeout: *timeout,
		TopicA:  *topicA,
		TopicB:  *topicB,
		Grade:   *grade,
		Verbose: *verbose,
	}

	if err := smoketest.Run(ctx, cfg); err != nil {
		os.Stderr.WriteString("smoke run failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
