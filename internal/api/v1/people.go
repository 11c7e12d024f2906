package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/PascmdeoMvd/Plataforma/internal/service/filter"
	"github.com/PascmdeoMvd/Plataforma/internal/service/session"
)

// PeopleResponse 过滤视图
type PeopleResponse struct {
	Rows  []session.Row `json:"rows"`
	Total int           `json:"total"`
}

// bindSelection 解析请求体中的分面选择；空请求体等于全选
func bindSelection(c *gin.Context) (filter.Selection, bool) {
	var sel filter.Selection
	if c.Request.ContentLength == 0 {
		return sel, true
	}
	if err := c.ShouldBindJSON(&sel); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求参数: " + err.Error()})
		return sel, false
	}
	return sel, true
}

// querySelection 从查询参数读取分面；未出现的参数视为全选，
// <分面>_none=1 表示一个值也不选
func querySelection(c *gin.Context) filter.Selection {
	return filter.Selection{
		Departments: queryFacet(c, "departments"),
		Interests:   queryFacet(c, "interests"),
	}
}

func queryFacet(c *gin.Context, key string) []string {
	if values, ok := c.GetQueryArray(key); ok {
		return values
	}
	if none, _ := strconv.ParseBool(c.Query(key + "_none")); none {
		return []string{}
	}
	return nil
}

// QueryPeople 按部门/兴趣过滤人员
// POST /api/people/query
func (h *Handler) QueryPeople(c *gin.Context) {
	sel, ok := bindSelection(c)
	if !ok {
		return
	}
	rows := h.session.View(sel)
	c.JSON(http.StatusOK, PeopleResponse{Rows: rows, Total: len(rows)})
}

// SearchPeople 按姓名模糊搜索
// GET /api/people/search?q=ana&limit=20
func (h *Handler) SearchPeople(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的 limit"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"names": h.session.Search(c.Query("q"), limit)})
}
