package handler

import (
	"strings"

	"willgate/internal/quorum"
	"willgate/internal/workflow/models"
	dErrors "willgate/pkg/domain-errors"
)

// VoteRequest casts a nominee vote. Epoch 0 means the current epoch.
type VoteRequest struct {
	Choice string `json:"choice"`
	Epoch  uint64 `json:"epoch,omitempty"`
}

func (r *VoteRequest) Validate() error {
	if strings.TrimSpace(r.Choice) == "" {
		return dErrors.New(dErrors.CodeValidation, "choice is required")
	}
	choice, err := quorum.ParseChoice(r.Choice)
	if err != nil {
		return err
	}
	r.Choice = string(choice)
	return nil
}

// CertificateRequest carries a proof: an opaque token, a QR payload, or the
// uploaded file's name.
type CertificateRequest struct {
	Token    string `json:"token,omitempty"`
	FileName string `json:"file_name,omitempty"`
}

func (r *CertificateRequest) Validate() error {
	r.Token = strings.TrimSpace(r.Token)
	r.FileName = strings.TrimSpace(r.FileName)
	if r.Token == "" && r.FileName == "" {
		return dErrors.New(dErrors.CodeValidation, "token or file_name is required")
	}
	return nil
}

// Proof prefers the token over the file name.
func (r *CertificateRequest) Proof() string {
	if r.Token != "" {
		return r.Token
	}
	return r.FileName
}

// ResetRequest selects a reset mode. An empty body is a soft reset.
type ResetRequest struct {
	Mode string `json:"mode,omitempty"`

	mode models.ResetMode
}

func (r *ResetRequest) Validate() error {
	mode, err := models.ParseResetMode(strings.TrimSpace(r.Mode))
	if err != nil {
		return err
	}
	r.mode = mode
	return nil
}

type AddBeneficiaryRequest struct {
	Address     string `json:"address"`
	DisplayName string `json:"display_name,omitempty"`
	Percentage  int    `json:"percentage"`
}

func (r *AddBeneficiaryRequest) Validate() error {
	r.Address = strings.TrimSpace(r.Address)
	if r.Address == "" {
		return dErrors.New(dErrors.CodeValidation, "address is required")
	}
	return nil
}
