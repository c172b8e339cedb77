package commands

import (
	"database/sql"

	"github.com/ankitdsmb/DictionaryImporter-sub008/config"
	"github.com/ankitdsmb/DictionaryImporter-sub008/db"
	"github.com/ankitdsmb/DictionaryImporter-sub008/errors"
	"github.com/ankitdsmb/DictionaryImporter-sub008/logger"
)

// openDatabase opens and migrates the lexicon database at the specified
// path. If dbPath is empty, it comes from configuration. Uses
// logger.Logger for db operations.
func openDatabase(dbPath string) (*sql.DB, error) {
	if dbPath == "" {
		path, err := config.GetDatabasePath()
		if err != nil {
			return nil, errors.Wrap(err, "failed to get database path")
		}
		dbPath = path
	}

	database, err := db.Open(dbPath, logger.Logger)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database at %s", dbPath)
	}

	if err := db.Migrate(database, logger.Logger); err != nil {
		database.Close()
		return nil, errors.Wrapf(err, "failed to run migrations on %s", dbPath)
	}

	return database, nil
}
