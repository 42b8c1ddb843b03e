// Package testing provides test utilities and database setup for testing the review funnel
package testing

import (
	"fmt"
	"math/rand"

	"github.com/reviewloop/reviewloop/models"
	"github.com/reviewloop/reviewloop/utils"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestMarketplace creates an Amazon UK marketplace with a unique natural key
func (tf *TestFixtures) CreateTestMarketplace() (*models.Marketplace, error) {
	marketplace := &models.Marketplace{
		NaturalKey: fmt.Sprintf("mkt-test-%06d", rand.Intn(900000)+100000),
		Platform:   models.PlatformAmazon,
		Code:       "UK",
		TLD:        utils.ToPtr("co.uk"),
	}

	if err := tf.DB.DB.Create(marketplace).Error; err != nil {
		return nil, fmt.Errorf("failed to create test marketplace: %w", err)
	}

	return marketplace, nil
}

// CreateTestCampaign creates a campaign under the given marketplace
func (tf *TestFixtures) CreateTestCampaign(marketplaceID uint) (*models.Campaign, error) {
	suffix := rand.Intn(900000) + 100000

	campaign := &models.Campaign{
		Name:          fmt.Sprintf("Test Campaign %d", suffix),
		Slug:          fmt.Sprintf("test-campaign-%d", suffix),
		MarketplaceID: marketplaceID,
	}

	if err := tf.DB.DB.Create(campaign).Error; err != nil {
		return nil, fmt.Errorf("failed to create test campaign: %w", err)
	}

	return campaign, nil
}

// CreateTestTarget creates a primary Amazon review target for the campaign
func (tf *TestFixtures) CreateTestTarget(campaignID uint) (*models.ReviewTarget, error) {
	suffix := rand.Intn(900000) + 100000

	target := &models.ReviewTarget{
		NaturalKey: fmt.Sprintf("target-test-%d", suffix),
		CampaignID: campaignID,
		Platform:   models.PlatformAmazon,
		ASIN:       utils.ToPtr("B0TESTASIN"),
		Title:      utils.ToPtr("Test Product"),
		IsPrimary:  true,
	}

	if err := tf.DB.DB.Create(target).Error; err != nil {
		return nil, fmt.Errorf("failed to create test target: %w", err)
	}

	return target, nil
}

// CreateTestShortLink creates a short link pointing at the campaign
func (tf *TestFixtures) CreateTestShortLink(campaignID uint) (*models.ShortLink, error) {
	link := &models.ShortLink{
		Slug:       fmt.Sprintf("test-link-%d", rand.Intn(900000)+100000),
		CampaignID: campaignID,
	}

	if err := tf.DB.DB.Create(link).Error; err != nil {
		return nil, fmt.Errorf("failed to create test short link: %w", err)
	}

	return link, nil
}

// CreateTestFunnel creates a marketplace, campaign, primary target, and short link
// wired together, returning the campaign with associations loaded
func (tf *TestFixtures) CreateTestFunnel() (*models.Campaign, *models.ShortLink, error) {
	marketplace, err := tf.CreateTestMarketplace()
	if err != nil {
		return nil, nil, err
	}

	campaign, err := tf.CreateTestCampaign(marketplace.ID)
	if err != nil {
		return nil, nil, err
	}

	if _, err := tf.CreateTestTarget(campaign.ID); err != nil {
		return nil, nil, err
	}

	link, err := tf.CreateTestShortLink(campaign.ID)
	if err != nil {
		return nil, nil, err
	}

	// Reload with associations
	var loaded models.Campaign
	err = tf.DB.DB.
		Preload("Marketplace").
		Preload("Targets").
		Preload("ShortLinks").
		First(&loaded, campaign.ID).Error
	if err != nil {
		return nil, nil, fmt.Errorf("failed to reload test campaign: %w", err)
	}

	return &loaded, link, nil
}

// CreateTestSubmission creates a review submission for the campaign
func (tf *TestFixtures) CreateTestSubmission(campaign *models.Campaign, orderNumber string) (*models.ReviewSubmission, error) {
	submission := &models.ReviewSubmission{
		UUID:         uuid.New(),
		CampaignID:   campaign.ID,
		CampaignName: campaign.Name,
		ProductName:  "Test Product",
		OrderNumber:  orderNumber,
		Used7Days:    true,
		Rating:       5,
		ReviewText:   "Great product, works exactly as described.",
	}

	if err := tf.DB.DB.Create(submission).Error; err != nil {
		return nil, fmt.Errorf("failed to create test submission: %w", err)
	}

	return submission, nil
}

// CreateTestScanEvent records a scan event against the short link
func (tf *TestFixtures) CreateTestScanEvent(shortLinkID uint) (*models.ScanEvent, error) {
	event := &models.ScanEvent{
		ShortLinkID: shortLinkID,
		IPHash:      utils.HashIP("203.0.113.10"),
		UserAgent:   utils.ToPtr("test-agent/1.0"),
	}

	if err := tf.DB.DB.Create(event).Error; err != nil {
		return nil, fmt.Errorf("failed to create test scan event: %w", err)
	}

	return event, nil
}

// CreateTestAdmin creates an active admin account with the given password
func (tf *TestFixtures) CreateTestAdmin(username, password string) (*models.Admin, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &models.Admin{
		UUID:         uuid.New(),
		Username:     username,
		PasswordHash: string(hashed),
		IsActive:     utils.ToPtr(true),
	}

	if err := tf.DB.DB.Create(admin).Error; err != nil {
		return nil, fmt.Errorf("failed to create test admin: %w", err)
	}

	return admin, nil
}

// GenerateTestOrderNumber produces a well-formed Amazon order number
func GenerateTestOrderNumber() string {
	return fmt.Sprintf("%03d-%07d-%07d", rand.Intn(900)+100, rand.Intn(9000000)+1000000, rand.Intn(9000000)+1000000)
}
