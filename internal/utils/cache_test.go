package utils

import (
	"testing"
	"time"
)

func TestCacheSetGetDelete(t *testing.T) {
	c := GetCache()

	c.Set("conv:k", "v", time.Minute)
	if got := c.Get("conv:k"); got != "v" {
		t.Errorf("Get = %v, want v", got)
	}

	c.Delete("conv:k")
	if c.Get("conv:k") != nil {
		t.Error("entry survived Delete")
	}

	c.Set("conv:expired", "v", -time.Second)
	if c.Get("conv:expired") != nil {
		t.Error("expired entry returned")
	}
}

func TestCacheDeletePrefix(t *testing.T) {
	c := GetCache()

	c.Set("list:1", 1, time.Minute)
	c.Set("list:2", 2, time.Minute)
	c.Set("aqi:paris", 42, time.Minute)
	defer c.Delete("aqi:paris")

	c.DeletePrefix("list:")

	if c.Get("list:1") != nil || c.Get("list:2") != nil {
		t.Error("prefixed entries survived DeletePrefix")
	}
	if c.Get("aqi:paris") == nil {
		t.Error("unrelated entry purged")
	}
}
