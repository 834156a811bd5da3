package seed

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sysu-ecnc-dev/timesheet-reminder/backend/internal/domain"
	"github.com/sysu-ecnc-dev/timesheet-reminder/backend/internal/utils"
)

var rosterHeaders = []string{"id", "name", "email", "is_bot", "is_deleted"}

// CSVRoster 从导出的成员表读取名册，列为 id,name,email,is_bot,is_deleted
type CSVRoster struct {
	Path string
}

func (c CSVRoster) ListIdentities(_ context.Context) ([]domain.Identity, error) {
	file, err := os.Open(c.Path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return ParseRoster(file)
}

func ParseRoster(r io.Reader) ([]domain.Identity, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	// 读取表头
	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("读取表头失败: %w", err)
	}

	columns := make(map[string]int, len(headers))
	for i, header := range headers {
		columns[strings.ToLower(strings.TrimSpace(header))] = i
	}
	for _, required := range rosterHeaders[:3] {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("缺少 %s 列", required)
		}
	}

	identities := make([]domain.Identity, 0)
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		isBot, err := parseFlag(record, columns, "is_bot")
		if err != nil {
			return nil, fmt.Errorf("第 %d 行: %w", line, err)
		}
		isDeleted, err := parseFlag(record, columns, "is_deleted")
		if err != nil {
			return nil, fmt.Errorf("第 %d 行: %w", line, err)
		}

		identities = append(identities, domain.Identity{
			ID:             strings.TrimSpace(record[columns["id"]]),
			DisplayName:    strings.TrimSpace(record[columns["name"]]),
			ContactAddress: strings.TrimSpace(record[columns["email"]]),
			IsBot:          isBot,
			IsDeleted:      isDeleted,
		})
	}

	return identities, nil
}

// 可选列，缺失或为空时视为 false
func parseFlag(record []string, columns map[string]int, name string) (bool, error) {
	i, ok := columns[name]
	if !ok || i >= len(record) || strings.TrimSpace(record[i]) == "" {
		return false, nil
	}
	return strconv.ParseBool(strings.TrimSpace(record[i]))
}

// RandomRoster 生成 N 个随机成员，用于本地开发
type RandomRoster struct {
	N           int
	EmailDomain string
}

func (r RandomRoster) ListIdentities(_ context.Context) ([]domain.Identity, error) {
	identities := make([]domain.Identity, 0, r.N)
	for i := 0; i < r.N; i++ {
		identities = append(identities, utils.GenerateRandomIdentity(r.EmailDomain))
	}
	return identities, nil
}
