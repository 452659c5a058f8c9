package ui

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"slices"
	"time"

	"github.com/skalibog/fundarb/pkg/logger"
)

// Регулярное выражение для удаления ANSI-цветов
var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// readLogTail читает JSON-лог и возвращает последние limit строк в виде для панели логов
func readLogTail(path string, limit int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Файл еще не создан
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	var logs []string

	for scanner.Scan() {
		logs = append(logs, formatLogLine(scanner.Text()))
		if limit > 0 && len(logs) > limit {
			logs = logs[1:]
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("чтение %s: %w", path, err)
	}

	return logs, nil
}

func formatLogLine(line string) string {
	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		return line
	}

	level, _ := entry["level"].(string)
	ts, _ := entry["ts"].(string)
	msg, _ := entry["msg"].(string)
	level = ansiRegex.ReplaceAllString(level, "")

	timestamp := ""
	if t, err := time.Parse(logger.TimeLayout, ts); err == nil {
		timestamp = t.Format("15:04:05")
	}

	out := fmt.Sprintf("[%s] [%s] %s", timestamp, level, msg)

	keys := make([]string, 0, len(entry))
	for k := range entry {
		switch k {
		case "level", "ts", "msg", "caller", "logger":
			continue
		}
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		out += fmt.Sprintf(" (%s: %v)", k, entry[k])
	}
	return out
}
