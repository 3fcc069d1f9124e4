package convo

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/siamauto/chatcore/core"
)

func TestCache_RoundTrip(t *testing.T) {
	c := NewCache()

	c.AddMessage("u1", core.NewUserMessage("สวัสดีครับ"))
	c.AddMessage("u1", core.NewAssistantMessage("สวัสดีค่ะ"))
	c.AddMessage("u2", core.NewUserMessage("hello"))

	got := c.GetMessages("u1")
	assert.Len(t, got, 2)
	assert.Equal(t, core.RoleUser, got[0].Role)
	assert.Equal(t, "สวัสดีค่ะ", got[1].Content)
	assert.Len(t, c.GetMessages("u2"), 1)
	assert.Empty(t, c.GetMessages("unknown"))
}

func TestCache_EvictsOldest(t *testing.T) {
	c := NewCache(func(o *CacheOptions) { o.MaxMessagesPerUser = 3 })

	c.AddMessage("u1", core.NewUserMessage("one"))
	c.AddMessage("u1", core.NewAssistantMessage("two"))
	c.AddMessage("u1", core.NewUserMessage("three"))
	c.AddMessage("u1", core.NewAssistantMessage("four"))

	got := c.GetMessages("u1")
	assert.Len(t, got, 3)
	assert.Equal(t, "two", got[0].Content)
	assert.Equal(t, "four", got[2].Content)
}

func TestCache_ReturnsCopy(t *testing.T) {
	c := NewCache()
	c.AddMessage("u1", core.NewUserMessage("original"))

	got := c.GetMessages("u1")
	got[0].Content = "mutated"

	assert.Equal(t, "original", c.GetMessages("u1")[0].Content)
}

func TestCache_WarmTruncates(t *testing.T) {
	c := NewCache(func(o *CacheOptions) { o.MaxMessagesPerUser = 2 })
	msgs := []core.Message{
		core.NewUserMessage("a"),
		core.NewAssistantMessage("b"),
		core.NewUserMessage("c"),
	}

	c.Warm("u1", msgs)

	got := c.GetMessages("u1")
	assert.Len(t, got, 2)
	assert.Equal(t, "b", got[0].Content)
}

func TestHeuristic_NeedsHistory(t *testing.T) {
	h := DefaultHeuristicConfig()

	assert.True(t, h.NeedsHistory("คันเดิมที่คุยไว้ราคาเท่าไหร่"))
	assert.True(t, h.NeedsHistory("what about the PREVIOUS one"))
	assert.False(t, h.NeedsHistory("มีรถ Toyota ไหม"))
}

func TestHeuristic_IsImportant(t *testing.T) {
	h := DefaultHeuristicConfig()

	assert.True(t, h.IsImportant("ขอจองคิวดูรถ", "", false))
	assert.True(t, h.IsImportant("", "ยืนยันนัดหมายเรียบร้อยค่ะ", false))
	assert.True(t, h.IsImportant("สวัสดี", "สวัสดีค่ะ", true), "tool turns are always important")
	assert.False(t, h.IsImportant("สวัสดี", "สวัสดีค่ะ", false))
}
