package database

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"

	zlog "fitness-tracker/internal/core/logger"
)

var ErrUnsupportedDriver = errors.New("unsupported db driver")

type Opts struct {
	Driver             string
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	LogLevel           string
	Logger             *zap.Logger // 为空时 gorm 日志走 stdout
}

func dialector(o Opts) (gorm.Dialector, string, error) {
	switch o.Driver {
	case "postgres":
		return postgres.Open(o.DSN), maskDSN(o.DSN), nil
	case "mysql":
		dsn := normalizeMySQLDSN(o.DSN, o.Username, o.Password)
		return mysql.Open(dsn), maskDSN(dsn), nil
	case "sqlite":
		return sqlite.Open(o.DSN), o.DSN, nil
	default:
		return nil, "", fmt.Errorf("%w: %q", ErrUnsupportedDriver, o.Driver)
	}
}

var gormLevels = map[string]logger.LogLevel{
	"silent": logger.Silent,
	"error":  logger.Error,
	"warn":   logger.Warn,
	"info":   logger.Info,
}

// gormLogger gorm 日志经 zap 输出；慢查询阈值 200ms，忽略 RecordNotFound（仓储层按 nil 处理）
func gormLogger(o Opts) logger.Interface {
	lvl, ok := gormLevels[strings.ToLower(o.LogLevel)]
	if !ok {
		lvl = logger.Warn
	}
	if o.Logger == nil {
		return logger.Default.LogMode(lvl)
	}
	return logger.New(
		log.New(zlog.ToWriter(o.Logger, zapcore.WarnLevel), "", 0),
		logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  lvl,
			IgnoreRecordNotFoundError: true,
		},
	)
}

// NewGorm 打开连接并设置连接池。sqlite 内存库每个连接各是一份独立的库，强制单连接。
func NewGorm(o Opts) (*gorm.DB, error) {
	dial, shown, err := dialector(o)
	if err != nil {
		return nil, err
	}
	if o.Logger != nil {
		o.Logger.Info("db open", zap.String("driver", o.Driver), zap.String("dsn", shown))
	}
	db, err := gorm.Open(dial, &gorm.Config{
		Logger:                 gormLogger(o),
		PrepareStmt:            o.Driver != "sqlite", // sqlite 单连接下事务内预编译会互等
		SkipDefaultTransaction: true,                 // 多语句操作显式走 Store.InTx
		CreateBatchSize:        200,
		NowFunc:                func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	maxOpen, maxIdle := o.MaxOpenConns, o.MaxIdleConns
	if o.Driver == "sqlite" && strings.Contains(o.DSN, ":memory:") {
		maxOpen, maxIdle = 1, 1
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxIdle)
	sqlDB.SetConnMaxLifetime(time.Duration(o.ConnMaxLifetimeMin) * time.Minute)
	if o.Driver == "sqlite" && maxOpen == 1 {
		// 单连接的内存库一旦回收就丢数据
		sqlDB.SetConnMaxLifetime(0)
	}
	return db, nil
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// maskDSN 隐藏 user:pass@ 中的密码
func maskDSN(dsn string) string {
	masked := dsn
	if at := strings.LastIndex(masked, "@"); at > 0 {
		prefix := masked[:at]
		if colon := strings.LastIndex(prefix, ":"); colon > 0 && !strings.HasPrefix(prefix[colon+1:], "//") {
			masked = prefix[:colon+1] + "****" + masked[at:]
		}
	}
	return masked
}

// jdbcTLS JDBC 的 useSSL 取值 → go-sql-driver 的 tls
var jdbcTLS = map[string]string{
	"true":        "true",
	"1":           "true",
	"skip-verify": "skip-verify",
	"preferred":   "preferred",
}

// jdbcDropped go-sql-driver 不认识的 JDBC 参数
var jdbcDropped = []string{"useUnicode", "zeroDateTimeBehavior", "autoReconnect"}

// normalizeMySQLDSN 把 mysql:// 或 jdbc:mysql:// 形式的 URL 改写为
// user:pass@tcp(host)/db?...；原生 DSN 原样返回。Username/Password 配置优先。
func normalizeMySQLDSN(input, userOverride, passOverride string) string {
	in := strings.TrimPrefix(strings.TrimSpace(input), "jdbc:")
	if !strings.HasPrefix(in, "mysql://") {
		return in
	}
	u, err := url.Parse(in)
	if err != nil {
		return in
	}

	q := u.Query()
	user, pass := q.Get("user"), q.Get("password")
	q.Del("user")
	q.Del("password")
	if u.User != nil && user == "" {
		user = u.User.Username()
	}
	if u.User != nil && pass == "" {
		pass, _ = u.User.Password()
	}
	user = firstNonEmpty(userOverride, user)
	pass = firstNonEmpty(passOverride, pass)

	if enc := q.Get("characterEncoding"); enc != "" && q.Get("charset") == "" {
		q.Set("charset", enc)
	}
	q.Del("characterEncoding")
	for _, k := range jdbcDropped {
		q.Del(k)
	}
	if v := strings.ToLower(q.Get("useSSL")); v != "" {
		tls, ok := jdbcTLS[v]
		if !ok {
			tls = "false"
		}
		q.Set("tls", tls)
		q.Del("useSSL")
	}
	if tz := q.Get("serverTimezone"); tz != "" {
		q.Set("loc", tz)
		q.Del("serverTimezone")
	}
	// 时间列要解析成 time.Time
	if q.Get("parseTime") == "" {
		q.Set("parseTime", "true")
	}
	if q.Get("charset") == "" {
		q.Set("charset", "utf8mb4")
	}

	var b strings.Builder
	if user != "" {
		b.WriteString(user)
		if pass != "" {
			b.WriteString(":" + pass)
		}
		b.WriteString("@")
	}
	fmt.Fprintf(&b, "tcp(%s)/%s", u.Host, strings.TrimPrefix(u.Path, "/"))
	if enc := q.Encode(); enc != "" {
		b.WriteString("?" + enc)
	}
	return b.String()
}

func firstNonEmpty(vs ...string) string {
	for _, v := range vs {
		if v != "" {
			return v
		}
	}
	return ""
}
