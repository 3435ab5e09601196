package config

import (
	"log"
	"os"
	"path"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

type yamlConfig struct {
	IsDebug             bool     `yaml:"debug"`
	LogFilePath         string   `yaml:"log_file_path"`
	DBPath              string   `yaml:"db_path"`
	BatchSize           int64    `yaml:"batch_size"`
	FileNamesToIgnore   []string `yaml:"file_names_to_ignore"`
	FolderNamesToIgnore []string `yaml:"folder_names_to_ignore"`
}

type Config struct {
	IsDebug             bool
	LogFilePath         string
	DBPath              string
	BatchSize           int64
	FileNamesToIgnore   []string
	FolderNamesToIgnore []string
}

// Validate ensures a parsed configuration is usable before a conversion starts.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.LogFilePath, validation.Required),
		validation.Field(&c.DBPath, validation.Required),
		validation.Field(&c.BatchSize, validation.Required, validation.Min(int64(1))),
	)
}

func Load(defaultConfigData []byte) (*Config, error) {
	configFile := "config.yaml"
	_, err := os.Stat(configFile)

	if err != nil {
		log.Print("No config file found. Creating a new config file...")
		err := os.WriteFile(configFile, defaultConfigData, 0600)

		if err != nil {
			return nil, err
		}
	}

	return parseConfigFile(configFile)
}

func parseConfigFile(configFilePath string) (*Config, error) {
	yamlFile, err := os.ReadFile(path.Clean(configFilePath))

	if err != nil {
		return nil, err
	}

	config := &yamlConfig{}

	err = yaml.Unmarshal(yamlFile, config)

	if err != nil {
		return nil, err
	}

	parsed := &Config{
		IsDebug:             config.IsDebug,
		LogFilePath:         config.LogFilePath,
		DBPath:              config.DBPath,
		BatchSize:           config.BatchSize,
		FileNamesToIgnore:   config.FileNamesToIgnore,
		FolderNamesToIgnore: config.FolderNamesToIgnore,
	}

	err = parsed.Validate()

	if err != nil {
		return nil, err
	}

	return parsed, nil
}
