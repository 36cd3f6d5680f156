// Command synth renders a strategy file into its emission targets without
// running the server.
//
//	synth -file strategy.yaml -target python -tier member
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/aitrader/strategy-studio/internal/core/domain"
	"github.com/aitrader/strategy-studio/internal/strategyfile"
	"github.com/aitrader/strategy-studio/internal/synth"
	"github.com/aitrader/strategy-studio/pkg/logger"
)

func main() {
	file := flag.String("file", "", "path to a YAML or JSON strategy file (empty for the default definition)")
	target := flag.String("target", "all", "structured|script|compiled (or json|python|java), or all")
	tierFlag := flag.String("tier", string(domain.TierMember), "anonymous|guest|member|pro")
	logLevel := flag.String("log-level", "warn", "log level")
	flag.Parse()

	log := logger.Init(logger.Options{Level: *logLevel, Pretty: true, Output: os.Stderr, Service: "synth"})

	tier, err := domain.ParseTier(*tierFlag)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid tier")
	}

	def := domain.DefaultStrategy()
	if *file != "" {
		if def, err = strategyfile.Load(*file); err != nil {
			log.Fatal().Err(err).Str("file", *file).Msg("failed to load strategy")
		}
	}

	targets := synth.Targets
	if *target != "all" {
		t, err := synth.ParseTarget(*target)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid target")
		}
		targets = []synth.Target{t}
	}

	s := synth.New()
	for i, t := range targets {
		a, err := s.Render(tier, def, t)
		if err != nil {
			log.Fatal().Err(err).Msg("render failed")
		}
		if len(targets) > 1 {
			if i > 0 {
				fmt.Println()
			}
			fmt.Printf("==> %s\n", t)
		}
		fmt.Println(a.Text)
		log.Debug().Str("target", string(t)).Bool("sample", a.Sample).Msg("rendered")
	}
}
