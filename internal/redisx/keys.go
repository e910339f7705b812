package redisx

import "time"

const (
	// Daftar menu (bentuk record, tanpa URL absolut): menu:list -> JSON []menu.Item
	KeyMenuList = "menu:list"

	// Daftar promo: promotions:list -> JSON []promotions.Promotion
	KeyPromotionList = "promotions:list"

	// Cache status order: order_status:{order_id} -> {"id":..,"status":"..","verified":..}
	KeyOrderStatus = "order_status:%d"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLListCache   = 10 * time.Minute
	TTLStatusCache = 5 * time.Minute
	TTLDedup       = 48 * time.Hour

	// Jeda sebelum key daftar dihapus kedua kali setelah write,
	// menyapu List yang sempat menulis ulang data lama.
	ListCacheSettle = 500 * time.Millisecond
)
