package config

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"lalan-be/internal/message"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

/*
type Config
menyimpan parameter koneksi dan instance database untuk PostgreSQL
*/
type Config struct {
	DB      *sqlx.DB
	User    string
	Pass    string
	Host    string
	Port    string
	DBName  string
	SSLMode string
}

/*
DatabaseConfig
menginisialisasi dan mengembalikan konfigurasi database jika koneksi berhasil
*/
func DatabaseConfig() (*Config, error) {
	user := MustGetEnv("DB_USER")
	pass := MustGetEnv("DB_PASSWORD")
	host := MustGetEnv("DB_HOST")
	port := MustGetEnv("DB_PORT")
	name := MustGetEnv("DB_NAME")
	ssl := os.Getenv("DB_SSL_MODE")
	if ssl == "" {
		ssl = "require"
	}
	dsn := fmt.Sprintf(
		"postgresql://%s:%s@%s:%s/%s?sslmode=%s",
		user, pass, host, port, name, ssl,
	)
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", message.InternalError, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: %w", message.InternalError, err)
	}
	return &Config{
		DB:      db,
		User:    user,
		Pass:    pass,
		Host:    host,
		Port:    port,
		DBName:  name,
		SSLMode: ssl,
	}, nil
}

// StorageConfig holds connection parameters for the S3-compatible
// object store backing item images (§4.10's Image Store).
type StorageConfig struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	Domain    string
}

// LoadStorageConfig reads the object-store credentials from the
// environment. Region and Domain fall back to sane defaults; the
// rest are required since there is no usable default bucket/endpoint.
func LoadStorageConfig() StorageConfig {
	return StorageConfig{
		Endpoint:  MustGetEnv("STORAGE_ENDPOINT"),
		Region:    GetEnv("STORAGE_REGION", "auto"),
		Bucket:    MustGetEnv("STORAGE_BUCKET"),
		AccessKey: MustGetEnv("STORAGE_ACCESS_KEY"),
		SecretKey: MustGetEnv("STORAGE_SECRET_KEY"),
		Domain:    GetEnv("STORAGE_DOMAIN", ""),
	}
}

/*
Variabel untuk status pemuatan environment.
Menandai apakah environment sudah dimuat.
*/
var envLoaded bool

/*
GetEnv mengambil nilai environment dengan fallback.
Mengembalikan nilai atau fallback jika tidak ada.
*/
func GetEnv(key, fallback string) string {
	LoadEnv()
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

/*
GetJWTSecret mengambil rahasia JWT dari environment.
Mengembalikan sebagai byte slice dengan fallback default.
*/
func GetJWTSecret() []byte {
	secret := GetEnv("JWT_SECRET", "tesingdev")
	return []byte(secret)
}

/*
LoadEnv memuat environment dari file jika belum dimuat.
Hanya berjalan sekali per aplikasi.
*/
func LoadEnv() {
	if envLoaded {
		return
	}
	if os.Getenv("APP_ENV") != "production" {
		_ = godotenv.Load(".env.dev")
	}
	envLoaded = true
}

/*
MustGetEnv mengambil nilai environment yang wajib.
Menghentikan program jika tidak ada.
*/
func MustGetEnv(key string) string {
	LoadEnv()
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("Missing required environment variable: %s", key)
	}
	return v
}

/*
Redis
client Redis global untuk seluruh aplikasi, dipakai sebagai availability
read-through cache oleh internal/availability (opsional — hanya aktif
jika REDIS_HOST diset).
*/
var Redis *redis.Client

/*
RedisCtx
context default untuk operasi Redis
*/
var RedisCtx = context.Background()

/*
InitRedis
menginisialisasi koneksi Redis dari environment dan memverifikasi dengan ping
*/
func InitRedis() {
	host := MustGetEnv("REDIS_HOST")
	portStr := GetEnv("REDIS_PORT", "6379")
	username := GetEnv("REDIS_USERNAME", "")
	password := GetEnv("REDIS_PASSWORD", "")

	port, _ := strconv.Atoi(portStr)

	Redis = redis.NewClient(&redis.Options{
		Addr:         host + ":" + strconv.Itoa(port),
		Username:     username,
		Password:     password,
		DB:           0,
		TLSConfig:    &tls.Config{InsecureSkipVerify: true},
		DialTimeout:  20 * time.Second,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})

	_, err := Redis.Ping(RedisCtx).Result()
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	log.Println("Redis connected successfully")
}
