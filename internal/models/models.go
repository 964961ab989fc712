package models

import "time"

// Complaint is one record from the consumer-complaint dataset. All columns
// except the complaint id are nullable in the source data, so they are
// pointer-typed and map to SQL NULL when absent.
type Complaint struct {
	DateReceived               *time.Time `json:"date_received,omitempty"`
	Product                    *string    `json:"product,omitempty"`
	SubProduct                 *string    `json:"sub_product,omitempty"`
	Issue                      *string    `json:"issue,omitempty"`
	SubIssue                   *string    `json:"sub_issue,omitempty"`
	ConsumerComplaintNarrative *string    `json:"consumer_complaint_narrative,omitempty"`
	CompanyPublicResponse      *string    `json:"company_public_response,omitempty"`
	Company                    *string    `json:"company,omitempty"`
	State                      *string    `json:"state,omitempty"`
	ZipCode                    *string    `json:"zip_code,omitempty"`
	Tags                       *string    `json:"tags,omitempty"`
	ConsumerConsentProvided    *string    `json:"consumer_consent_provided,omitempty"`
	SubmittedVia               *string    `json:"submitted_via,omitempty"`
	DateSentToCompany          *time.Time `json:"date_sent_to_company,omitempty"`
	CompanyResponseToConsumer  *string    `json:"company_response_to_consumer,omitempty"`
	TimelyResponse             *bool      `json:"timely_response,omitempty"`
	ConsumerDisputed           *string    `json:"consumer_disputed,omitempty"`
	ComplaintID                int64      `json:"complaint_id"`
}
