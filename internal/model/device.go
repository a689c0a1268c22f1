package model

// DeviceProfile - профиль эмуляции устройства. Неизменяем в пределах
// сессии: один замер никогда не смешивает мобильную и десктопную эмуляцию.
type DeviceProfile struct {
	Mobile bool
}

// Фиксированный контракт мобильной эмуляции. Значения входят во внешний
// контракт воспроизводимости замеров и не настраиваются.
const (
	MobileViewportWidth  = 412
	MobileViewportHeight = 823
	MobileScaleFactor    = 2.625

	MobileDownloadBytesPerSec = 1.5 * 1024 * 1024 / 8
	MobileUploadBytesPerSec   = 750 * 1024 / 8
	MobileLatencyMs           = 40
	MobileCPUSlowdown         = 4
)

// Label возвращает имя профиля для логов и вывода
func (p DeviceProfile) Label() string {
	if p.Mobile {
		return "mobile"
	}
	return "desktop"
}
