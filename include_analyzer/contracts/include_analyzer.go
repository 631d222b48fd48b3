package contracts

import "github.com/meysamhadeli/shaderinc/include_analyzer/models"

type IIncludeAnalyzer interface {
	Crawl(root string) (*models.CrawlResult, error)
	Verify(crawl *models.CrawlResult) *models.Report
	Run(root string) (*models.Report, error)
	GetCacheStats() models.CacheStats
}
