package kvdb

const (
	TypeMemory = "memory"
	TypeRedis  = "redis"
)

type Conf struct {
	Type string `json:"type"` // "memory" (default) or "redis"
	Host string `json:"host"`
	Port int    `json:"port"`
	PW   string `json:"pw"`
	DB   int    `json:"db"` // optional db number e.g. redis
}
