package consts

const (
	// ApplicationName 应用名称
	ApplicationName = "Style Filter Server"

	// ApplicationVersion 后端版本
	ApplicationVersion = "1.2.0"

	// RefreshTokenCookie 刷新令牌 Cookie 名称
	RefreshTokenCookie = "sf_refresh_token"

	// ReportBanThreshold 举报封禁阈值，举报计数超过该值即封禁滤镜
	ReportBanThreshold = 25

	// MaxUploadFileSize 单张滤镜图片大小上限 (5MB)
	MaxUploadFileSize = 5 * 1024 * 1024

	// MaxUploadFiles 单次上传滤镜数量上限
	MaxUploadFiles = 10

	// StorageFolder 滤镜图片在对象存储中的目录前缀
	StorageFolder = "style-filters"

	// MagicLinkTokenLength 魔法链接令牌随机字节数
	MagicLinkTokenLength = 64

	// DefaultAvatarPath 新用户默认头像路径（相对于 CDN 公共地址）
	DefaultAvatarPath = "static/images/default-profile.jpg"
)

// ReportAction 举报操作类型
type ReportAction string

const (
	ReportActionIncrement ReportAction = "increment"
	ReportActionDecrement ReportAction = "decrement"
)
