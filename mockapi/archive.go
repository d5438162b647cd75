package mockapi

import (
	"fmt"
	"net/http"
	"sort"

	"nexdoc/console/models"
)

// handleArchive projects the contract store into the archive envelope:
// folders grouped by contract type, tags drawn from type and status.
func (s *Server) handleArchive(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	folderCounts := make(map[string]int)
	tagSet := make(map[string]bool)
	items := make([]models.RawArchiveItem, 0, len(s.contracts))

	for _, c := range s.contracts {
		folderCounts[c.Type]++
		tags := []string{c.Type}
		if c.Status == models.ContractAnalyzed || c.Status == models.ContractCompleted {
			tags = append(tags, "已审查")
		}
		for _, t := range tags {
			tagSet[t] = true
		}
		items = append(items, models.RawArchiveItem{
			ID:     c.ID,
			Name:   c.Name,
			Folder: c.Type,
			Date:   c.UploadDate,
			Size:   c.Size,
			Tags:   tags,
		})
	}

	folderNames := make([]string, 0, len(folderCounts))
	for name := range folderCounts {
		folderNames = append(folderNames, name)
	}
	sort.Strings(folderNames)

	folders := make([]models.Folder, 0, len(folderNames))
	for i, name := range folderNames {
		folders = append(folders, models.Folder{
			ID:    i + 1,
			Name:  name,
			Count: folderCounts[name],
			Size:  fmt.Sprintf("%.1f MB", float64(folderCounts[name])*1.6),
		})
	}

	tags := make([]string, 0, len(tagSet))
	for t := range tagSet {
		tags = append(tags, t)
	}
	sort.Strings(tags)

	writeJSON(w, http.StatusOK, models.ArchiveData{
		Stats: []models.ArchiveStat{
			{Name: "已归档合同", Value: fmt.Sprintf("%d", len(items))},
			{Name: "存储空间", Value: fmt.Sprintf("%.1f MB", float64(len(items))*1.6)},
			{Name: "归档文件夹", Value: fmt.Sprintf("%d", len(folders))},
			{Name: "保留期限", Value: "3 年"},
		},
		Folders:   folders,
		Contracts: items,
		Tags:      tags,
	})
}
