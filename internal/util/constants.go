package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

const (
	StorageLocal = "local"
	StorageMinio = "minio"
)

// 文件上传相关常量
const (
	MimeImage       = "image/"
	MaxThumbnailMiB = 5
)

var (
	AllowedImageExtensions = []string{".jpg", ".jpeg", ".png", ".webp", ".gif"}
)

// gin 上下文键
const (
	ContextUserKey   = "user"
	ContextConfigKey = "config"
)
