package main

import (
	"flag"
	"fmt"
	"hash/maphash"
	"math/rand/v2"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/snowzach/rotatefilehook"

	"github.com/vancomm/regionsweeper/internal/mines"
	"github.com/vancomm/regionsweeper/internal/regions"
)

var log = logrus.New()

var (
	regionKey   string
	catalogPath string
	seed        uint64
	count       int
	reveal      bool
	logFile     string
	verbose     bool
)

func init() {
	flag.StringVar(&regionKey, "region", "", "region to build boards for (default: catalog start)")
	flag.StringVar(&catalogPath, "regions", "", "region catalog file (default: bundled catalog)")
	flag.Uint64Var(&seed, "seed", 0, "random seed, 0 picks one")
	flag.IntVar(&count, "count", 1, "number of boards to build")
	flag.BoolVar(&reveal, "reveal", false, "print the player's view after the opening move")
	flag.StringVar(&logFile, "log-file", "", "also write logs to a rotating file")
	flag.BoolVar(&verbose, "v", false, "debug logging")
}

func setupLogging() error {
	log.SetFormatter(&logrus.TextFormatter{ForceColors: true})
	log.SetOutput(os.Stderr)
	level := logrus.InfoLevel
	if verbose {
		level = logrus.DebugLevel
	}
	log.SetLevel(level)

	if logFile == "" {
		return nil
	}
	hook, err := rotatefilehook.NewRotateFileHook(rotatefilehook.RotateFileConfig{
		Filename:   logFile,
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
		Level:      level,
		Formatter:  &logrus.JSONFormatter{},
	})
	if err != nil {
		return fmt.Errorf("unable to create log file hook: %w", err)
	}
	log.AddHook(hook)
	return nil
}

func loadCatalog() (*regions.Catalog, error) {
	if catalogPath == "" {
		return regions.Default(), nil
	}
	return regions.Load(os.DirFS(filepath.Dir(catalogPath)), filepath.Base(catalogPath))
}

func main() {
	flag.Parse()

	if err := setupLogging(); err != nil {
		log.Fatal(err)
	}

	catalog, err := loadCatalog()
	if err != nil {
		log.Fatal("unable to load catalog: ", err)
	}
	if regionKey == "" {
		regionKey = catalog.Start
	}
	region, err := catalog.Get(regionKey)
	if err != nil {
		log.Fatal(err)
	}
	if seed == 0 {
		seed = new(maphash.Hash).Sum64()
	}

	log.WithFields(logrus.Fields{
		"region": region.Key,
		"cells":  region.Shape.PlayableCount(),
		"mines":  region.Mines,
		"seed":   seed,
	}).Info("building boards")

	failed := 0
	for i := range count {
		r := rand.New(rand.NewPCG(seed, uint64(i)))
		out, err := render(region, r, reveal)
		if err != nil {
			failed++
			log.WithField("board", i).Error(err)
			continue
		}
		fmt.Printf("# %s #%d\n%s\n", region.Name, i, out)
	}

	if failed > 0 {
		log.Errorf("%d of %d boards failed validation", failed, count)
		os.Exit(1)
	}
	log.Debug("done")
}

// render builds a board and checks it before printing. With reveal the
// board is shown as a player sees it after the opening move.
func render(region *regions.Region, r *rand.Rand, reveal bool) (string, error) {
	if !reveal {
		b, err := mines.Build(region.Shape, region.Mines, r)
		if err != nil {
			return "", err
		}
		if err := check(b, region.Shape, region.Mines); err != nil {
			return "", err
		}
		return b.String(), nil
	}

	g, err := mines.NewGame(region.Shape, region.Mines, r)
	if err != nil {
		return "", err
	}
	if err := check(g.Board, region.Shape, region.Mines); err != nil {
		return "", err
	}
	log.WithFields(logrus.Fields{
		"revealed": g.Revealed,
		"safe":     g.Board.SafeCount(),
		"status":   g.Status,
	}).Debug("opening move")
	return mines.PlayerGrid(g).ToString(g.Board.Cols), nil
}
