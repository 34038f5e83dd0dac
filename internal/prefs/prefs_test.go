package prefs

import "testing"

func TestValidateCacheSettings(t *testing.T) {
	tests := []struct {
		name    string
		in      CacheSettings
		wantErr bool
	}{
		{"valid", CacheSettings{MaxSizeMB: 500, MaxAgeDays: 30}, false},
		{"minimum", CacheSettings{MaxSizeMB: 1, MaxAgeDays: 1}, false},
		{"at limits", CacheSettings{MaxSizeMB: MaxCacheSizeMBLimit, MaxAgeDays: MaxCacheAgeDaysLimit}, false},
		{"zero size", CacheSettings{MaxSizeMB: 0, MaxAgeDays: 30}, true},
		{"negative size", CacheSettings{MaxSizeMB: -10, MaxAgeDays: 30}, true},
		{"zero age", CacheSettings{MaxSizeMB: 500, MaxAgeDays: 0}, true},
		{"negative age", CacheSettings{MaxSizeMB: 500, MaxAgeDays: -1}, true},
		{"size over limit", CacheSettings{MaxSizeMB: MaxCacheSizeMBLimit + 1, MaxAgeDays: 30}, true},
		{"age over limit", CacheSettings{MaxSizeMB: 500, MaxAgeDays: MaxCacheAgeDaysLimit + 1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCacheSettings(tt.in)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCacheSettings(%+v) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
		})
	}
}
