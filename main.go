/* Apache v2 license
*  Copyright (C) <2019> Intel Corporation
*
*  SPDX-License-Identifier: Apache-2.0
 */

package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/intel/rsp-sw-toolkit-im-suite-tid-service/app/config"
	"github.com/intel/rsp-sw-toolkit-im-suite-tid-service/app/routes"
	"github.com/intel/rsp-sw-toolkit-im-suite-tid-service/app/tag"
	"github.com/intel/rsp-sw-toolkit-im-suite-tid-service/pkg/healthcheck"
	"github.com/rcrowley/go-metrics"
	log "github.com/sirupsen/logrus"
)

func main() {

	mConfigurationError := metrics.GetOrRegisterGauge("TID.Main.ConfigurationError", nil)
	mDatabaseRegisterError := metrics.GetOrRegisterGauge("TID.Main.DatabaseRegisterError", nil)
	mDBPrepareError := metrics.GetOrRegisterGauge("TID.Main.DBPrepareError", nil)

	// Ensure simple text format
	log.SetFormatter(&log.TextFormatter{
		DisableColors: true,
		FullTimestamp: true,
	})

	// Load config variables
	err := config.InitConfig()
	fatalErrorHandler("unable to load configuration variables", err, mConfigurationError)

	isHealthyPtr := flag.Bool("isHealthy", false, "a bool, runs a healthcheck")
	flag.Parse()

	if *isHealthyPtr {
		os.Exit(healthcheck.Healthcheck(config.AppConfig.Port))
	}

	setLoggingLevel(config.AppConfig.LoggingLevel)

	// Initialize metrics reporting
	initMetrics(config.AppConfig.MetricsLogIntervalSeconds)

	log.WithFields(log.Fields{
		"Method": "main",
		"Action": "Start",
	}).Info("Starting TID service...")

	log.WithFields(log.Fields{
		"Method": "main",
		"Action": "Start",
		"Driver": config.AppConfig.DbDriver,
	}).Info("Opening tag registry...")

	store, err := tag.Open(config.AppConfig.DbDriver, config.AppConfig.DbDataSource)
	fatalErrorHandler("Unable to open the tag registry.", err, mDatabaseRegisterError)

	// Close the registry
	defer func() {
		errorHandler("error closing the tag registry", store.Close(), nil)
	}()

	// Prepares tables and indexes
	prepareCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	err = store.Prepare(prepareCtx)
	cancel()
	fatalErrorHandler("error preparing the tag registry", err, mDBPrepareError)

	// Initiate webserver and routes
	startWebServer(store, config.AppConfig.Port, config.AppConfig.ServiceName)

	log.WithField("Method", "main").Info("Completed.")
}

// newServer creates the http server with the configured timeouts
func newServer(store *tag.Store, port string) *http.Server {
	return &http.Server{
		Addr:           ":" + port,
		Handler:        routes.NewRouter(store),
		ReadTimeout:    time.Duration(config.AppConfig.ServerReadTimeOutSeconds) * time.Second,
		WriteTimeout:   time.Duration(config.AppConfig.ServerWriteTimeOutSeconds) * time.Second,
		MaxHeaderBytes: 1 << 20,
	}
}

func startWebServer(store *tag.Store, port string, serviceName string) {

	// Start Webserver and pass additional data
	server := newServer(store, port)

	// We want to report the listener is closed.
	var wg sync.WaitGroup
	wg.Add(1)

	// Start the listener.
	go func() {
		log.Infof("%s running!", serviceName)
		log.Infof("Listener closed : %v", server.ListenAndServe())
		wg.Done()
	}()

	// Listen for an interrupt signal from the OS.
	osSignals := make(chan os.Signal, 1)
	signal.Notify(osSignals, os.Interrupt)

	// Wait for a signal to shutdown.
	<-osSignals

	// Create a context to attempt a graceful 5 second shutdown.
	const timeout = 5 * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Attempt the graceful shutdown by closing the listener and
	// completing all inflight requests.
	if err := server.Shutdown(ctx); err != nil {

		log.WithFields(log.Fields{
			"Method":  "main",
			"Action":  "shutdown",
			"Timeout": timeout,
			"Message": err.Error(),
		}).Error("Graceful shutdown did not complete")

		// Looks like we timedout on the graceful shutdown. Kill it hard.
		if err := server.Close(); err != nil {
			log.WithFields(log.Fields{
				"Method":  "main",
				"Action":  "shutdown",
				"Message": err.Error(),
			}).Error("Error killing server")
		}
	}

	// Wait for the listener to report it is closed.
	wg.Wait()
}

// initMetrics periodically logs the metrics registry; intervalSeconds <= 0
// disables it
func initMetrics(intervalSeconds int) {
	if intervalSeconds <= 0 {
		return
	}
	go metrics.Log(metrics.DefaultRegistry, time.Duration(intervalSeconds)*time.Second, metricsLogger())
}
