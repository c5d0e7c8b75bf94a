package models

// AddPlayerPayload is the payload of add_player.
type AddPlayerPayload struct {
	PlayerID int64  `json:"player_id" validate:"required,gt=0"`
	Name     string `json:"name,omitempty" validate:"max=128"`
}

// RemovePlayerPayload is the payload of remove_player.
type RemovePlayerPayload struct {
	PlayerID int64 `json:"player_id" validate:"required,gt=0"`
}

// SetLineupPayload is the payload of set_lineup.
type SetLineupPayload struct {
	Starters []int64 `json:"starters" validate:"dive,gt=0"`
	Bench    []int64 `json:"bench" validate:"dive,gt=0"`
}

// UpdatePreferencesPayload is the payload of update_preferences.
type UpdatePreferencesPayload struct {
	Preferences Preferences `json:"preferences" validate:"required"`
}

// AnalyzePlayerPayload is the payload of analyze_player and refresh_player.
type AnalyzePlayerPayload struct {
	PlayerID int64 `json:"player_id" validate:"required,gt=0"`
}

// GetMemoryPayload is the payload of get_memory.
type GetMemoryPayload struct {
	Limit    int            `json:"limit" validate:"gte=0,lte=1000"`
	Category MemoryCategory `json:"category,omitempty"`
}
