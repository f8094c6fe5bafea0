package handler

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

func parseUintParam(c *gin.Context, key string) (uint, error) {
	raw := c.Param(key)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return uint(id), nil
}

// parsePage reads ?page=, clamping missing, non-numeric and < 1 values to 1.
func parsePage(c *gin.Context) int {
	return parsePositiveInt(c.DefaultQuery("page", "1"), 1)
}

func parsePositiveInt(value string, fallback int) int {
	num, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || num <= 0 {
		return fallback
	}
	return num
}

// formTruthy treats any non-empty checkbox value as on, except explicit negatives.
func formTruthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "0", "false", "off", "no":
		return false
	default:
		return true
	}
}

// localRedirectTarget keeps same-site referers and falls back to "/".
func localRedirectTarget(referer, host string) string {
	if referer == "" {
		return "/"
	}
	parsed, err := url.Parse(referer)
	if err != nil {
		return "/"
	}
	if parsed.Host != "" && !strings.EqualFold(parsed.Host, host) {
		return "/"
	}
	if !strings.HasPrefix(parsed.Path, "/") || strings.HasPrefix(parsed.Path, "//") {
		return "/"
	}
	target := url.URL{Path: parsed.Path, RawQuery: parsed.RawQuery}
	return target.String()
}

func withQueryFlag(target, key string) string {
	parsed, err := url.Parse(target)
	if err != nil {
		return "/?" + key + "=1"
	}
	values := parsed.Query()
	values.Set(key, "1")
	parsed.RawQuery = values.Encode()
	return parsed.String()
}

func uintToString(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
