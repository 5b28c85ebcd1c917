package domain

type Config struct {
	CatalogID   string `yaml:"id"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	BaseURL     string `yaml:"baseUrl"`
	SpecVersion string `yaml:"specVersion"`
	PageSize    int    `yaml:"pageSize"`
}
