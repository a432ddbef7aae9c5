package db

import (
	"net/url"
	"strings"

	"github.com/go-sql-driver/mysql"
)

const mask = "****"

// SanitizeDSN masks the password in a connection string so it can be
// printed or logged.
func SanitizeDSN(engine, dsn string) string {
	if engine == "mysql" {
		if cfg, err := mysql.ParseDSN(dsn); err == nil {
			if cfg.Passwd == "" {
				return dsn
			}
			cfg.Passwd = mask
			return cfg.FormatDSN()
		}
	}

	u, err := url.Parse(dsn)
	if err == nil && u.Scheme != "" && u.User != nil {
		if _, ok := u.User.Password(); ok {
			// built by hand so the mask is not percent-encoded
			masked := u.Scheme + "://" + u.User.Username() + ":" + mask + "@" + u.Host + u.Path
			if u.RawQuery != "" {
				masked += "?" + u.RawQuery
			}
			return masked
		}
		return dsn
	}

	// key=value form: "host=db password=secret"
	if strings.Contains(dsn, "password=") {
		fields := strings.Fields(dsn)
		for i, f := range fields {
			if strings.HasPrefix(f, "password=") {
				fields[i] = "password=" + mask
			}
		}
		return strings.Join(fields, " ")
	}
	return dsn
}
