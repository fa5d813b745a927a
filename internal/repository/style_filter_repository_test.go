package repository

import (
	"testing"

	"style-filter-server/internal/model"
	"style-filter-server/internal/testutils"

	"gorm.io/gorm"
)

func createTestFilter(t *testing.T, gdb *gorm.DB, authorID *uint) *model.StyleFilter {
	t.Helper()
	filter := &model.StyleFilter{
		ImgURL:      "https://cdn.example.com/f.jpg",
		BlurImgURL:  "https://cdn.example.com/f.jpg?blur=1000",
		SmallImgURL: "https://cdn.example.com/f.jpg?width=400",
		AuthorID:    authorID,
	}
	if err := gdb.Create(filter).Error; err != nil {
		t.Fatalf("create filter: %v", err)
	}
	return filter
}

// 测试内容：ApplyReport 同一事务内更新计数、封禁标记与用户已举报集合。
func TestApplyReport_UpdatesCounterAndUserSet(t *testing.T) {
	gdb := testutils.SetupDB(t)
	repo := NewStyleFilterRepository(gdb)

	user := createTestUser(t, gdb, "grace", "grace@example.com")
	filter := createTestFilter(t, gdb, &user.ID)

	reported := user.ReportedFilterIDs.WithAdded(filter.ID)
	if err := repo.ApplyReport(filter.ID, user.ID, true, false, reported); err != nil {
		t.Fatalf("apply report: %v", err)
	}

	var reloadedFilter model.StyleFilter
	if err := gdb.First(&reloadedFilter, filter.ID).Error; err != nil {
		t.Fatalf("reload filter: %v", err)
	}
	if reloadedFilter.ReportCount != 1 || reloadedFilter.IsBanned {
		t.Fatalf("unexpected filter state: count=%d banned=%v", reloadedFilter.ReportCount, reloadedFilter.IsBanned)
	}

	var reloadedUser model.User
	if err := gdb.First(&reloadedUser, user.ID).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if !reloadedUser.ReportedFilterIDs.Has(filter.ID) {
		t.Fatalf("期望用户已举报集合包含该滤镜")
	}
}

// 测试内容：撤销举报递减计数并同步封禁标记。
func TestApplyReport_Decrement(t *testing.T) {
	gdb := testutils.SetupDB(t)
	repo := NewStyleFilterRepository(gdb)

	user := createTestUser(t, gdb, "heidi", "heidi@example.com")
	filter := createTestFilter(t, gdb, &user.ID)

	reported := user.ReportedFilterIDs.WithAdded(filter.ID)
	if err := repo.ApplyReport(filter.ID, user.ID, true, false, reported); err != nil {
		t.Fatalf("increment: %v", err)
	}
	if err := repo.ApplyReport(filter.ID, user.ID, false, false, reported.WithRemoved(filter.ID)); err != nil {
		t.Fatalf("decrement: %v", err)
	}

	var reloadedFilter model.StyleFilter
	if err := gdb.First(&reloadedFilter, filter.ID).Error; err != nil {
		t.Fatalf("reload filter: %v", err)
	}
	if reloadedFilter.ReportCount != 0 {
		t.Fatalf("期望计数归零，实际 %d", reloadedFilter.ReportCount)
	}

	var reloadedUser model.User
	if err := gdb.First(&reloadedUser, user.ID).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if reloadedUser.ReportedFilterIDs.Has(filter.ID) {
		t.Fatalf("期望撤销后集合不再包含该滤镜")
	}
}

// 测试内容：按作者对外标识过滤列表并分页。
func TestListFilters_AuthorFilterAndPagination(t *testing.T) {
	gdb := testutils.SetupDB(t)
	repo := NewStyleFilterRepository(gdb)

	author := createTestUser(t, gdb, "ivan", "ivan@example.com")
	other := createTestUser(t, gdb, "judy", "judy@example.com")
	for i := 0; i < 3; i++ {
		createTestFilter(t, gdb, &author.ID)
	}
	createTestFilter(t, gdb, &other.ID)

	filters, total, err := repo.List(ListFiltersParams{
		AuthorPublicID: &author.PublicUserID,
		Limit:          2,
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 3 {
		t.Fatalf("期望作者滤镜总数 3，实际 %d", total)
	}
	if len(filters) != 2 {
		t.Fatalf("期望分页返回 2 条，实际 %d", len(filters))
	}

	_, allTotal, err := repo.List(ListFiltersParams{Limit: 10})
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if allTotal != 4 {
		t.Fatalf("期望全部滤镜总数 4，实际 %d", allTotal)
	}
}

// 测试内容：批量删除只影响指定 ID。
func TestDeleteByIDs(t *testing.T) {
	gdb := testutils.SetupDB(t)
	repo := NewStyleFilterRepository(gdb)

	user := createTestUser(t, gdb, "kent", "kent@example.com")
	keep := createTestFilter(t, gdb, &user.ID)
	remove := createTestFilter(t, gdb, &user.ID)

	if err := repo.DeleteByIDs([]uint{remove.ID}); err != nil {
		t.Fatalf("delete: %v", err)
	}

	count, err := repo.CountAll()
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("期望剩余 1 条，实际 %d", count)
	}
	if _, err := repo.FindByPublicID(keep.PublicFilterID); err != nil {
		t.Fatalf("保留的滤镜应当仍可查询: %v", err)
	}
}
