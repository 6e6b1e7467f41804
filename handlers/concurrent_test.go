// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/danielhkuo/scan-for-a-prize/claims"
	"github.com/danielhkuo/scan-for-a-prize/mailer"
	"github.com/danielhkuo/scan-for-a-prize/models"
	"github.com/danielhkuo/scan-for-a-prize/testutil"
)

// TestConcurrentLeadSubmissions verifies that simultaneous scans of the same
// sign all produce exactly one lead each
func TestConcurrentLeadSubmissions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewPublicHandler(db, testutil.GetTestConfig(), &mailer.Recorder{})
	p := testutil.CreateTestProperty(t, db, testutil.WithPrize("Gift card"))

	numVisitors := 20
	var successCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numVisitors; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			req := testutil.MakeRequest("POST", "/leads", map[string]string{
				"name":       fmt.Sprintf("Visitor %d", idx),
				"email":      fmt.Sprintf("visitor%d@example.com", idx),
				"propertyId": p.ID,
			}, nil)
			w := call(handler.CreateLead, req, nil, nil)
			if w.Code == http.StatusCreated {
				successCount.Add(1)
			}
		}(i)
	}

	wg.Wait()

	if int(successCount.Load()) != numVisitors {
		t.Errorf("Expected %d successful submissions, got %d", numVisitors, successCount.Load())
	}

	var leadCount int64
	if err := db.Model(&models.Lead{}).Where("property_id = ?", p.ID).Count(&leadCount).Error; err != nil {
		t.Fatalf("Failed to count leads: %v", err)
	}
	if leadCount != int64(numVisitors) {
		t.Errorf("Expected %d leads in database, got %d", numVisitors, leadCount)
	}
}

// TestConcurrentClaimRequests verifies that when several realtors submit the
// correct code at once, exactly one claim wins
func TestConcurrentClaimRequests(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewClaimHandler(db, cfg, claims.NewService(db, &mailer.Recorder{}, cfg.BaseURL))
	p := testutil.CreateTestProperty(t, db, testutil.WithSlug("abc123"))

	numRealtors := 10
	var okCount, conflictCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numRealtors; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			req := testutil.MakeRequest("POST", "/claim", map[string]string{
				"slug":             "abc123",
				"verificationCode": "XT7-82C4",
				"realtorEmail":     fmt.Sprintf("agent%d@x.com", idx),
				"realtorName":      fmt.Sprintf("Agent %d", idx),
			}, nil)
			w := call(handler.Claim, req, nil, nil)
			switch w.Code {
			case http.StatusOK:
				okCount.Add(1)
			case http.StatusBadRequest:
				conflictCount.Add(1)
			}
		}(i)
	}

	wg.Wait()

	if okCount.Load() != 1 {
		t.Errorf("Expected exactly 1 successful claim, got %d", okCount.Load())
	}
	if int(conflictCount.Load()) != numRealtors-1 {
		t.Errorf("Expected %d rejected claims, got %d", numRealtors-1, conflictCount.Load())
	}

	var claimCount int64
	db.Model(&models.PropertyClaim{}).Where("property_id = ?", p.ID).Count(&claimCount)
	if claimCount != 1 {
		t.Errorf("Expected 1 claim record, got %d", claimCount)
	}
	if got := reloadProperty(t, db, p.ID).Status; got != models.StatusClaimed {
		t.Errorf("Expected claimed, got %s", got)
	}
}
