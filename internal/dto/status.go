package dto

type StatusDTO struct {
	App     AppStatusDTO     `json:"app"`
	Storage StorageStatusDTO `json:"storage"`
	Sync    SyncStatusDTO    `json:"sync"`
}

type AppStatusDTO struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	StartedAt string `json:"started_at"`
	UptimeSec int64  `json:"uptime_sec"`
}

type StorageStatusDTO struct {
	Driver        string `json:"driver"`
	SchemaVersion int    `json:"schema_version"`
}

type SyncStatusDTO struct {
	RecommenderURL string `json:"recommender_url"`
	Workers        int    `json:"workers"`
	Subscribers    int    `json:"subscribers"`
}
