package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"weather-agent/internal/agent"
	"weather-agent/internal/config"
	"weather-agent/internal/dataset"
	"weather-agent/internal/weather"
)

func main() {
	log.SetFlags(0)

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s <location>\n\n", os.Args[0])
		fmt.Fprintln(flag.CommandLine.Output(), "Print the weather description for a location.")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	runtime := agent.New(agent.Options{
		APIKey:  cfg.OpenAIAPIKey,
		BaseURL: cfg.OpenAIBaseURL,
		Model:   cfg.OpenAIModel,
		Timeout: cfg.AgentTimeout,
	})

	resolver := weather.NewResolver(dataset.Default(), runtime)

	result, err := resolver.Resolve(context.Background(), flag.Arg(0))
	if err != nil {
		log.Fatalf("weather-agent: %v", err)
	}

	fmt.Println(result)
}
