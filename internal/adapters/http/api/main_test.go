package api_test

import (
	"os"
	"testing"

	"github.com/okian/pinsight/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}
