package logger

import (
	"go.uber.org/zap"
)

// Log defaults to a no-op logger so packages can log before InitLogger runs
// (tests never call it).
var Log = zap.NewNop()

func InitLogger(production bool) {
	var err error
	if production {
		Log, err = zap.NewProduction()
	} else {
		Log, err = zap.NewDevelopment()
	}
	if err != nil {
		panic("Failed to init logger: " + err.Error())
	}
}

func SyncLogger() {
	_ = Log.Sync()
}
