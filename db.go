package main

import (
	"log"

	"notion-tools/config"
	"notion-tools/models"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func initDb(config *config.Config) *gorm.DB {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(getLogLevel(config)),
	}

	return connect(config.DBPath, gormConfig)
}

func getLogLevel(config *config.Config) logger.LogLevel {
	if config.IsDebug {
		return logger.Info
	}

	return logger.Silent
}

func testDB() *gorm.DB {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	return connect("file::memory:?cache=shared", gormConfig)
}

func connect(dsn string, gormConfig *gorm.Config) *gorm.DB {
	db, err := GetDriver(dsn, gormConfig)

	if err != nil {
		log.Fatalf("failed to connect to the database: %v", err)
	}

	err = db.AutoMigrate(
		&models.Run{},
		&models.Entry{},
		&models.Rename{},
		&models.Database{},
		&models.DatabaseColumn{},
		&models.DatabaseKey{},
	)

	if err != nil {
		log.Fatalf("failed to migrate the database")
	}

	return db
}
