package main

import (
	"context"
	"flag"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/mycok/sigterms/commentindex/store/es"
	"github.com/mycok/sigterms/commentindex/store/memory"
	"github.com/mycok/sigterms/tagger"
)

const appName = "sigterms"

func main() {
	host, _ := os.Hostname()
	// Instantiate a root logger that will be passed to all components.
	rootLogger := logrus.New()
	logger := rootLogger.WithFields(logrus.Fields{
		"app":    appName,
		"run_id": uuid.New().String(),
		"host":   host,
	})

	if err := runMain(rootLogger, logger); err != nil {
		logger.WithField("err", err).Error("shutting down due to an error")
		os.Exit(1)
	}
}

func runMain(rootLogger *logrus.Logger, logger *logrus.Entry) error {
	var (
		storeConfig  es.Config
		taggerConfig tagger.Config
	)

	endpoint := flag.String(
		"endpoint", "http://localhost:9200/",
		"URI of the comments store."+
			" [supported URI's: http(s)://host:9200/, es://node1:9200,...,nodeN:9200, in-memory://]",
	)
	logLevel := flag.String("log-level", "info", "Minimum level of emitted log lines")

	flag.StringVar(&storeConfig.IndexName, "index", es.DefaultIndexName, "Name of the comments index")
	flag.StringVar(
		&storeConfig.DocType, "doc-type", es.DefaultDocType,
		"Mapping type used in bulk requests. The default only works against 7.x servers;"+
			" pass an empty value for 8.x servers, which reject _type in bulk metadata",
	)
	flag.DurationVar(
		&storeConfig.RequestTimeout, "request-timeout",
		es.DefaultRequestTimeout, "Upper bound for every store request",
	)
	flag.BoolVar(
		&storeConfig.SyncUpdates, "sync-updates", false,
		"Refresh the index after each bulk request so that later searches observe the new tags",
	)

	flag.IntVar(&taggerConfig.Limit, "limit", tagger.DefaultLimit, "Number of comments to tag")
	flag.IntVar(&taggerConfig.PageSize, "page-size", tagger.DefaultPageSize, "Number of hits requested per search")
	flag.IntVar(&taggerConfig.BatchSize, "batch-size", tagger.DefaultBatchSize, "Number of updates per bulk request")

	flag.Parse()

	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		return fmt.Errorf("invalid --log-level: %w", err)
	}
	rootLogger.SetLevel(level)

	fetchAPI, indexAPI, err := getStores(*endpoint, storeConfig, logger)
	if err != nil {
		return err
	}

	taggerConfig.FetchAPI = fetchAPI
	taggerConfig.IndexAPI = indexAPI
	taggerConfig.Logger = logger

	t, err := tagger.New(taggerConfig)
	if err != nil {
		return err
	}

	ctx, cancelFn := context.WithCancel(context.Background())
	defer cancelFn()

	// Launch a separate goroutine to listen and respond to os signals
	// and trigger a graceful shutdown.
	go func() {
		signalChan := make(chan os.Signal, 1)
		signal.Notify(signalChan, syscall.SIGINT, syscall.SIGHUP)

		select {
		case s := <-signalChan:
			logger.WithField("signal", s.String()).Info("shutting down due to os signal")
			cancelFn()
		case <-ctx.Done():
		}
	}()

	res, err := t.Run(ctx)
	logger.WithFields(logrus.Fields{
		"fetched":         res.Fetched,
		"searches":        res.Searches,
		"indexed":         res.Indexed,
		"batches":         res.Batches,
		"dropped_batches": res.DroppedBatches,
	}).Info("run summary")

	return err
}

func getStores(endpoint string, config es.Config, logger *logrus.Entry) (tagger.FetchAPI, tagger.IndexAPI, error) {
	if endpoint == "" {
		return nil, nil, fmt.Errorf("store URI must be specified with --endpoint")
	}

	url, err := url.Parse(endpoint)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse store URI: %w", err)
	}

	switch url.Scheme {
	case "in-memory":
		logger.Info("using in-memory comment store")

		store, err := memory.NewInMemoryStore()
		if err != nil {
			return nil, nil, err
		}

		return store, store, nil
	case "http", "https":
		config.Nodes = []string{url.Scheme + "://" + url.Host}
	case "es":
		nodes := strings.Split(url.Host, ",")
		for i := 0; i < len(nodes); i++ {
			nodes[i] = "http://" + nodes[i]
		}
		config.Nodes = nodes
	default:
		return nil, nil, fmt.Errorf("unsupported store URI scheme: %q", url.Scheme)
	}

	logger.WithField("nodes", config.Nodes).Info("using ES comment store")

	// The fetcher and the indexer each own a client.
	config.Logger = logger.WithField("store", "fetch")
	fetchStore, err := es.NewElasticsearchStore(config)
	if err != nil {
		return nil, nil, err
	}

	config.Logger = logger.WithField("store", "index")
	indexStore, err := es.NewElasticsearchStore(config)
	if err != nil {
		return nil, nil, err
	}

	return fetchStore, indexStore, nil
}
