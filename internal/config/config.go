// Package config loads the server's key-value config file. The only
// setting is the TCP port ("port 5000"); a missing file or missing port
// key is fatal at startup.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

var ErrPortMissing = errors.New("port not found in config file")

// Config holds the settings read at startup.
type Config struct {
	Port int
}

// Load parses a config file of whitespace-separated key/value lines.
// Lines that do not form a key and an integer value are skipped.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 2 {
			continue
		}
		value, err := strconv.Atoi(fields[1])
		if err != nil {
			continue
		}
		if fields[0] == "port" {
			return &Config{Port: value}, nil
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return nil, ErrPortMissing
}
