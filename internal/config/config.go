// Package config 统一配置管理
//
// 配置加载策略：
//  1. 从 .env 加载敏感信息（数据库口令、JWT 密钥）和 APP_ENV
//  2. 根据 APP_ENV 加载对应的 configs/{env}.yaml 配置文件
//  3. 环境变量可覆盖 YAML 配置
//
// 使用方式：
//   - 开发环境: APP_ENV=dev (默认)
//   - 测试环境: APP_ENV=test
//   - 生产环境: APP_ENV=prod
package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment 环境类型
type Environment string

const (
	EnvProduction  Environment = "prod"
	EnvTest        Environment = "test"
	EnvDevelopment Environment = "dev"
)

// 支持的存储驱动
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// YAMLConfig YAML 配置文件结构
type YAMLConfig struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // mongo | postgres | sqlite

	// mongo
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	Name string `yaml:"name"`

	// postgres
	PGHost    string `yaml:"pg_host"`
	PGPort    int    `yaml:"pg_port"`
	PGUser    string `yaml:"pg_user"`
	PGSSLMode string `yaml:"pg_sslmode"`

	// sqlite
	Path string `yaml:"path"`
}

// Config 应用配置（最终使用的配置）
type Config struct {
	Env           Environment
	Driver        string
	MongoURI      string
	MongoDatabase string
	DatabaseURL   string // postgres
	SQLitePath    string
	APIPort       string
	JWTSecret     string
}

var configPaths = []string{
	"configs",
	"../configs",
	"../../configs",
	"../../../configs",
}

var envPaths = []string{
	".env",
	"../.env",
	"../../.env",
	"../../../.env",
}

// Load 加载配置
// 1. 加载 .env（敏感信息 + APP_ENV）
// 2. 根据 APP_ENV 加载 configs/{env}.yaml
// 3. 构建最终配置，缺失 JWT 密钥时直接退出
func Load() *Config {
	// 加载 .env
	for _, p := range envPaths {
		if err := godotenv.Load(p); err == nil {
			break
		}
	}

	env := parseEnv(getEnv("APP_ENV", "dev"))
	yamlCfg := loadYAMLConfig(env)

	// 敏感信息只从环境变量取
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("[config] JWT_SECRET is required")
	}

	cfg := &Config{
		Env:           env,
		Driver:        getEnv("DB_DRIVER", yamlCfg.Database.Driver),
		MongoURI:      buildMongoURI(yamlCfg.Database, dbUser, dbPassword),
		MongoDatabase: yamlCfg.Database.Name,
		DatabaseURL:   buildDatabaseURL(yamlCfg.Database, dbUser, dbPassword),
		SQLitePath:    yamlCfg.Database.Path,
		APIPort:       getEnv("API_PORT", yamlCfg.Server.Port),
		JWTSecret:     jwtSecret,
	}

	if override := os.Getenv("MONGO_URI"); override != "" {
		cfg.MongoURI = override
	}
	if override := os.Getenv("DATABASE_URL"); override != "" {
		cfg.DatabaseURL = override
	}

	return cfg
}

// loadYAMLConfig 加载 YAML 配置文件
// 加载顺序：默认值 → common.yaml → {env}.yaml
func loadYAMLConfig(env Environment) *YAMLConfig {
	cfg := &YAMLConfig{
		Server: ServerConfig{Port: "8080"},
		Database: DatabaseConfig{
			Driver:    DriverMongo,
			Host:      "localhost",
			Port:      27017,
			Name:      "flavorhood",
			PGHost:    "localhost",
			PGPort:    5432,
			PGUser:    "flavorhood",
			PGSSLMode: "disable",
			Path:      "flavorhood.db",
		},
	}

	for _, base := range configPaths {
		path := filepath.Join(base, "common.yaml")
		if data, err := os.ReadFile(path); err == nil {
			yaml.Unmarshal(data, cfg)
			break
		}
	}

	filename := fmt.Sprintf("%s.yaml", env)
	for _, base := range configPaths {
		path := filepath.Join(base, filename)
		if data, err := os.ReadFile(path); err == nil {
			yaml.Unmarshal(data, cfg)
			break
		}
	}

	return cfg
}

// buildMongoURI 构建 MongoDB 连接字符串
// 未配置账号时使用免认证本地连接
func buildMongoURI(db DatabaseConfig, user, password string) string {
	if user == "" {
		return fmt.Sprintf("mongodb://%s:%d", db.Host, db.Port)
	}
	return fmt.Sprintf("mongodb://%s:%s@%s:%d", user, password, db.Host, db.Port)
}

// buildDatabaseURL 构建 PostgreSQL 连接字符串
func buildDatabaseURL(db DatabaseConfig, user, password string) string {
	if user == "" {
		user = db.PGUser
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		user, password, db.PGHost, db.PGPort, db.Name, db.PGSSLMode)
}

func parseEnv(env string) Environment {
	switch strings.ToLower(env) {
	case "test":
		return EnvTest
	case "prod", "production":
		return EnvProduction
	default:
		return EnvDevelopment
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// IsTest 是否为测试环境
func (c *Config) IsTest() bool {
	return c.Env == EnvTest
}

// String 返回配置摘要（隐藏口令）
func (c *Config) String() string {
	return fmt.Sprintf("Config{Env: %s, Driver: %s, Mongo: %s}",
		c.Env, c.Driver, maskPassword(c.MongoURI))
}

// maskPassword 隐藏连接串中的口令
func maskPassword(url string) string {
	re := regexp.MustCompile(`(://[^:/]+:)([^@]+)(@)`)
	return re.ReplaceAllString(url, "${1}***${3}")
}
