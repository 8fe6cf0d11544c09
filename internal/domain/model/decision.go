package model

import (
	"time"

	"github.com/The-Hieusss/jobless-demo/internal/domain/enums"
)

type Decision struct {
	ID        int64           `json:"id"`
	SwiperID  string          `json:"swiper_id"`
	TargetID  string          `json:"target_id"`
	Direction enums.Direction `json:"direction"`
	CreatedAt time.Time       `json:"created_at"`
}
