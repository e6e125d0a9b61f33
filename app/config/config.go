/* Apache v2 license
*  Copyright (C) <2019> Intel Corporation
*
*  SPDX-License-Identifier: Apache-2.0
 */

package config

import (
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const (
	maxServerReadTimeoutSeconds  = 1800
	maxServerWriteTimeoutSeconds = 1800

	configName = "configuration"
	configType = "json"
	envPrefix  = "TID"

	// DriverSQLite selects the embedded sqlite3 registry
	DriverSQLite = "sqlite3"
	// DriverPostgres selects a PostgreSQL registry
	DriverPostgres = "postgres"
)

type (
	variables struct {
		ServiceName, LoggingLevel, Port string
		ServerReadTimeOutSeconds        int
		ServerWriteTimeOutSeconds       int
		ResponseLimit                   int
		DbDriver, DbDataSource          string
		BatchWorkers, BatchMaxSize      int
		MetricsLogIntervalSeconds       int
		EnableCORS                      bool
		CORSOrigin                      string
	}
)

// AppConfig exports all config variables
var AppConfig variables

// InitConfig loads application variables from res/configuration.json, with
// TID_ prefixed environment variables taking precedence.
func InitConfig() error {
	AppConfig = variables{}

	config := newConfiguration()
	if err := config.ReadInConfig(); err != nil {
		return errors.Wrapf(err, "Unable to load config variables: %s", err.Error())
	}

	loaded, err := loadVariables(config)
	if err != nil {
		return err
	}
	AppConfig = loaded
	return nil
}

func newConfiguration() *viper.Viper {
	config := viper.New()
	config.SetConfigName(configName)
	config.SetConfigType(configType)
	config.AddConfigPath("./res")
	config.AddConfigPath(".")
	config.SetEnvPrefix(envPrefix)
	config.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	config.AutomaticEnv()
	return config
}

// nolint :gocyclo
func loadVariables(config *viper.Viper) (variables, error) {
	var vars variables
	var err error

	vars.ServiceName, err = getString(config, "serviceName")
	if err != nil {
		return vars, errors.Wrapf(err, "Unable to load config variables: %s", err.Error())
	}

	vars.LoggingLevel, err = getString(config, "loggingLevel")
	if err != nil {
		return vars, errors.Wrapf(err, "Unable to load config variables: %s", err.Error())
	}

	vars.Port, err = getString(config, "port")
	if err != nil {
		return vars, errors.Wrapf(err, "Unable to load config variables: %s", err.Error())
	}

	vars.ServerReadTimeOutSeconds = getOrDefaultInt(config, "serverReadTimeOutSeconds", 900)
	vars.ServerReadTimeOutSeconds = clamp(vars.ServerReadTimeOutSeconds, 1, maxServerReadTimeoutSeconds)

	vars.ServerWriteTimeOutSeconds = getOrDefaultInt(config, "serverWriteTimeOutSeconds", 900)
	vars.ServerWriteTimeOutSeconds = clamp(vars.ServerWriteTimeOutSeconds, 1, maxServerWriteTimeoutSeconds)

	vars.ResponseLimit = getOrDefaultInt(config, "responseLimit", 10000)
	if vars.ResponseLimit < 1 {
		return vars, errors.New("responseLimit cannot be lesser than 1")
	}

	vars.DbDriver = strings.ToLower(getOrDefaultString(config, "dbDriver", DriverSQLite))
	if vars.DbDriver != DriverSQLite && vars.DbDriver != DriverPostgres {
		return vars, errors.Errorf("dbDriver must be %s or %s, got %q", DriverSQLite, DriverPostgres, vars.DbDriver)
	}
	vars.DbDataSource = getOrDefaultString(config, "dbDataSource", "tid_inventory.db")

	vars.BatchWorkers = getOrDefaultInt(config, "batchWorkers", 4)
	if vars.BatchWorkers < 1 {
		return vars, errors.New("batchWorkers cannot be lesser than 1")
	}

	vars.BatchMaxSize = getOrDefaultInt(config, "batchMaxSize", 10000)
	if vars.BatchMaxSize < 1 {
		return vars, errors.New("batchMaxSize cannot be lesser than 1")
	}

	// 0 disables periodic metrics logging
	vars.MetricsLogIntervalSeconds = getOrDefaultInt(config, "metricsLogIntervalSeconds", 0)

	vars.EnableCORS = getOrDefaultBool(config, "enableCORS", false)
	vars.CORSOrigin = getOrDefaultString(config, "corsOrigin", "*")

	return vars, nil
}

func clamp(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

func getString(config *viper.Viper, path string) (string, error) {
	if !config.IsSet(path) {
		return "", errors.Errorf("%s is missing from configuration", path)
	}
	return config.GetString(path), nil
}

func getOrDefaultBool(config *viper.Viper, path string, defaultValue bool) bool {
	if !config.IsSet(path) {
		log.Debugf("%s was missing from configuration, setting to default value of %v", path, defaultValue)
		return defaultValue
	}
	return config.GetBool(path)
}

func getOrDefaultString(config *viper.Viper, path string, defaultValue string) string {
	if !config.IsSet(path) {
		log.Debugf("%s was missing from configuration, setting to default value of %s", path, defaultValue)
		return defaultValue
	}
	return config.GetString(path)
}

func getOrDefaultInt(config *viper.Viper, path string, defaultValue int) int {
	if !config.IsSet(path) {
		log.Debugf("%s was missing from configuration, setting to default value of %d", path, defaultValue)
		return defaultValue
	}
	return config.GetInt(path)
}
