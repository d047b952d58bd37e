// SPDX-License-Identifier: AGPL-3.0
// Copyright 2025 Kadir Pekel
//
// Licensed under the GNU Affero General Public License v3.0 (AGPL-3.0) (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.gnu.org/licenses/agpl-3.0.en.html
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package tools

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kadirpekel/agiloft-mcp/pkg/agiloft"
)

// Workflows implements the composite business tools that chain multiple
// backend operations in a single invocation, complementing the granular
// per-entity CRUD tools.
type Workflows struct {
	dispatcher *agiloft.Dispatcher
	logger     *slog.Logger
	now        func() time.Time
}

// NewWorkflows creates the workflow tool set over the dispatcher.
func NewWorkflows(dispatcher *agiloft.Dispatcher) *Workflows {
	return &Workflows{
		dispatcher: dispatcher,
		logger:     slog.Default().With("component", "workflows"),
		now:        time.Now,
	}
}

// WorkflowTool binds a composite tool to its handler.
type WorkflowTool struct {
	Tool    mcp.Tool
	Handler func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

// Tools returns all workflow tools with their handlers bound.
func (w *Workflows) Tools() []WorkflowTool {
	return []WorkflowTool{
		{preflightCreateContractTool(), w.handlePreflightCreateContract},
		{createContractWithCompanyTool(), w.handleCreateContractWithCompany},
		{getContractSummaryTool(), w.handleGetContractSummary},
		{findExpiringContractsTool(), w.handleFindExpiringContracts},
		{onboardCompanyWithContactTool(), w.handleOnboardCompanyWithContact},
		{attachFileToContractTool(), w.handleAttachFileToContract},
	}
}

// Workflow response envelope, with next_steps guidance for the calling agent.

func workflowResponse(operation string, data map[string]any, nextSteps, warnings []string) *mcp.CallToolResult {
	envelope := map[string]any{
		"success":   true,
		"operation": operation,
		"data":      data,
	}
	if len(nextSteps) > 0 {
		envelope["next_steps"] = nextSteps
	}
	if len(warnings) > 0 {
		envelope["warnings"] = warnings
	}
	return mcp.NewToolResultText(marshalEnvelope(envelope))
}

func workflowError(operation, message string, partial map[string]any) *mcp.CallToolResult {
	envelope := map[string]any{
		"success":   false,
		"operation": operation,
		"error":     message,
	}
	if len(partial) > 0 {
		envelope["partial_data"] = partial
	}
	return mcp.NewToolResultText(marshalEnvelope(envelope))
}

// search is a shorthand for a structured search through the dispatcher.
func (w *Workflows) search(ctx context.Context, entity, query string, fields []string, limit int) ([]agiloft.Record, error) {
	result, err := w.dispatcher.Execute(ctx, entity, agiloft.OpSearch, agiloft.Args{
		Query:  query,
		Fields: fields,
		Limit:  limit,
	})
	if err != nil {
		return nil, err
	}
	return result.Records, nil
}

func stringArg(raw map[string]any, key string) string {
	s, _ := raw[key].(string)
	return s
}

func intArg(raw map[string]any, key string, fallback int) int {
	switch v := raw[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return fallback
	}
}

func boolArg(raw map[string]any, key string) bool {
	b, _ := raw[key].(bool)
	return b
}

func mapArg(raw map[string]any, key string) map[string]any {
	m, _ := raw[key].(map[string]any)
	return m
}

func recordString(rec agiloft.Record, key string) string {
	s, _ := rec[key].(string)
	return s
}

// ---------------------------------------------------------------------------
// preflight_create_contract
// ---------------------------------------------------------------------------

func preflightCreateContractTool() mcp.Tool {
	return mcp.Tool{
		Name: "agiloft_preflight_create_contract",
		Description: "Validate contract creation prerequisites WITHOUT creating anything. " +
			"Checks contract type availability, company existence, and type compatibility. " +
			"Returns ready_to_create status, required fields, warnings, and next steps.",
		InputSchema: schema(props{
			"contract_type": prop("string",
				"Contract type name to validate (e.g. 'Master Services Agreement'). "+
					"If omitted, returns all active contract types for selection."),
			"company_name": prop("string",
				"Company name to validate. If provided, checks existence and "+
					"type compatibility with the selected contract type."),
		}),
	}
}

func (w *Workflows) handlePreflightCreateContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	const op = "preflight_create_contract"
	raw := req.GetArguments()
	contractType := stringArg(raw, "contract_type")
	companyName := stringArg(raw, "company_name")

	data := map[string]any{}
	var warnings, nextSteps []string

	typeFields := []string{
		"id", "contract_type", "party_type", "description",
		"default_contract_term_in_months", "default_autorenewal_term_in_months",
	}

	if contractType == "" {
		types, err := w.search(ctx, "contract_type", "status=Active", typeFields, 0)
		if err != nil {
			return workflowError(op, err.Error(), nil), nil
		}
		data["available_contract_types"] = types
		data["ready_to_create"] = false
		nextSteps = append(nextSteps,
			"Select a contract type from the list and call this tool again with the contract_type parameter.")
		return workflowResponse(op, data, nextSteps, warnings), nil
	}

	typeQuery := fmt.Sprintf("contract_type='%s' AND status=Active", contractType)
	typeResults, err := w.search(ctx, "contract_type", typeQuery, typeFields, 0)
	if err != nil {
		return workflowError(op, err.Error(), nil), nil
	}

	if len(typeResults) == 0 {
		data["ready_to_create"] = false
		warnings = append(warnings,
			fmt.Sprintf("Contract type '%s' not found or not active.", contractType))
		activeTypes, err := w.search(ctx, "contract_type", "status=Active",
			[]string{"id", "contract_type", "party_type"}, 0)
		if err == nil {
			data["available_contract_types"] = activeTypes
		}
		nextSteps = append(nextSteps, "Choose from the available active contract types.")
		return workflowResponse(op, data, nextSteps, warnings), nil
	}

	typeInfo := typeResults[0]
	data["contract_type"] = typeInfo

	readyToCreate := true
	if companyName != "" {
		companies, err := w.search(ctx, "company",
			fmt.Sprintf("company_name~='%s'", companyName),
			[]string{"id", "company_name", "type_of_company", "status"}, 0)
		if err != nil {
			return workflowError(op, err.Error(), data), nil
		}

		if len(companies) == 0 {
			readyToCreate = false
			warnings = append(warnings,
				fmt.Sprintf("Company '%s' not found. Create it first or check the name.", companyName))
			nextSteps = append(nextSteps,
				"Use agiloft_create_company or agiloft_onboard_company_with_contact to create the company first.")
		} else {
			company := companies[0]
			data["company"] = company

			partyType := recordString(typeInfo, "party_type")
			companyType := recordString(company, "type_of_company")
			if partyType != "" && companyType != "" && partyType != companyType {
				warnings = append(warnings, fmt.Sprintf(
					"Type mismatch: contract type expects party_type='%s' but company is "+
						"type_of_company='%s'. This may cause issues.", partyType, companyType))
			}
			if status := recordString(company, "status"); status != "Active" {
				warnings = append(warnings, fmt.Sprintf(
					"Company '%s' status is '%s', not Active.", companyName, status))
			}
		}
	} else {
		nextSteps = append(nextSteps, "Provide a company_name to validate company compatibility.")
	}

	requiredFields := map[string]any{
		"record_type":                  "Contract, Child Contract, or Amendment",
		"auto_renewal_term_in_months":  "integer",
		"confidential":                 "string",
		"evaluation_frequency":         "integer",
		"contract_type":                ":" + contractType,
	}
	if companyName != "" && data["company"] != nil {
		requiredFields["company_name"] = ":" + companyName
	}
	data["required_fields"] = requiredFields

	linkedCompany := "(provide company name with : prefix)"
	if companyName != "" {
		linkedCompany = ":" + companyName
	}
	data["linked_fields_warning"] = "CRITICAL: The following fields are LINKED FIELDS and their " +
		"values MUST start with a colon (:) prefix when creating or updating. " +
		"Without the colon prefix, the API will reject the value or fail silently."
	data["linked_fields"] = map[string]any{
		"contract_type":           ":" + contractType,
		"company_name":            linkedCompany,
		"internal_contract_owner": ":<owner name> (e.g. :Robert Barash)",
	}

	data["ready_to_create"] = readyToCreate && len(warnings) == 0
	if readyToCreate && len(warnings) == 0 {
		nextSteps = append(nextSteps, fmt.Sprintf(
			"All validations passed. Use agiloft_create_contract with the required fields "+
				"to create the contract. IMPORTANT: Use colon prefix for linked fields - "+
				"contract_type, company_name, and internal_contract_owner values MUST start "+
				"with ':' (e.g. contract_type=':%s').", contractType))
	}

	return workflowResponse(op, data, nextSteps, warnings), nil
}

// ---------------------------------------------------------------------------
// create_contract_with_company
// ---------------------------------------------------------------------------

func createContractWithCompanyTool() mcp.Tool {
	return mcp.Tool{
		Name: "agiloft_create_contract_with_company",
		Description: "Create a contract with automatic company resolution. " +
			"Searches for the company by name, optionally creates it if missing, " +
			"then creates the contract. Returns the created contract and company details.",
		InputSchema: schema(props{
			"contract_data": props{
				"type": "object",
				"description": "Contract fields to create. Must include record_type, " +
					"auto_renewal_term_in_months, confidential, evaluation_frequency. " +
					"company_name will be set from the resolved company.",
				"additionalProperties": true,
			},
			"company_name": prop("string", "Company name to search for and link to the contract"),
			"create_company_if_missing": props{
				"type":        "boolean",
				"description": "Create the company if it doesn't exist (default false)",
				"default":     false,
			},
			"company_data": props{
				"type": "object",
				"description": "Company data for creation if create_company_if_missing is true. " +
					"Must include type_of_company and status if creating.",
				"additionalProperties": true,
			},
		}, "contract_data", "company_name"),
	}
}

func (w *Workflows) handleCreateContractWithCompany(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	const op = "create_contract_with_company"
	raw := req.GetArguments()
	contractData := mapArg(raw, "contract_data")
	companyName := stringArg(raw, "company_name")
	createIfMissing := boolArg(raw, "create_company_if_missing")
	companyData := mapArg(raw, "company_data")

	data := map[string]any{}
	var nextSteps []string

	companies, err := w.search(ctx, "company",
		fmt.Sprintf("company_name='%s'", companyName),
		[]string{"id", "company_name", "type_of_company", "status"}, 0)
	if err != nil {
		return workflowError(op, err.Error(), nil), nil
	}

	switch {
	case len(companies) > 0:
		data["company"] = companies[0]
		data["company_action"] = "found_existing"
	case createIfMissing:
		createData := map[string]any{}
		for k, v := range companyData {
			createData[k] = v
		}
		createData["company_name"] = companyName
		result, err := w.dispatcher.Execute(ctx, "company", agiloft.OpCreate, agiloft.Args{Data: createData})
		if err != nil {
			return workflowError(op, err.Error(), data), nil
		}
		data["company"] = result.Data
		data["company_action"] = "created_new"
	default:
		return workflowError(op, fmt.Sprintf(
			"Company '%s' not found. Set create_company_if_missing=true and provide "+
				"company_data to create it, or create it separately first.", companyName), nil), nil
	}

	createData := map[string]any{}
	for k, v := range contractData {
		createData[k] = v
	}
	createData["company_name"] = companyName

	result, err := w.dispatcher.Execute(ctx, "contract", agiloft.OpCreate, agiloft.Args{Data: createData})
	if err != nil {
		return workflowError(op, err.Error(), data), nil
	}
	data["contract"] = result.Data

	nextSteps = append(nextSteps,
		"Contract created successfully. You can now:\n"+
			"- Upload attachments with agiloft_attach_file_to_contract\n"+
			"- Review the full contract with agiloft_get_contract_summary")

	return workflowResponse(op, data, nextSteps, nil), nil
}

// ---------------------------------------------------------------------------
// get_contract_summary
// ---------------------------------------------------------------------------

func getContractSummaryTool() mcp.Tool {
	return mcp.Tool{
		Name: "agiloft_get_contract_summary",
		Description: "Get a comprehensive contract summary in one call. " +
			"Retrieves the contract, associated company details, and attachment count. " +
			"Returns an enriched view with all related information.",
		InputSchema: schema(props{
			"contract_id": props{
				"type":        "integer",
				"description": "The ID of the contract to summarize",
				"minimum":     1,
			},
		}, "contract_id"),
	}
}

var contractSummaryFields = []string{
	"id", "record_type", "contract_title1", "company_name",
	"contract_type", "contract_amount", "contract_start_date",
	"contract_end_date", "contract_term_in_months", "wfstate",
	"internal_contract_owner", "date_signed", "confidential",
	"auto_renewal_term_in_months", "evaluation_frequency",
	"contract_description", "cost_center",
}

func (w *Workflows) handleGetContractSummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	const op = "get_contract_summary"
	raw := req.GetArguments()
	contractID := int64(intArg(raw, "contract_id", 0))

	data := map[string]any{}
	var warnings, nextSteps []string

	result, err := w.dispatcher.Execute(ctx, "contract", agiloft.OpGet, agiloft.Args{
		RecordID: contractID,
		Fields:   contractSummaryFields,
	})
	if err != nil {
		return workflowError(op, err.Error(), nil), nil
	}
	contract, _ := result.Data.(agiloft.Record)
	data["contract"] = contract

	if companyName := recordString(contract, "company_name"); companyName != "" {
		cleanName := strings.TrimLeft(companyName, ":")
		companies, err := w.search(ctx, "company",
			fmt.Sprintf("company_name='%s'", cleanName),
			[]string{"id", "company_name", "type_of_company", "status",
				"industry", "main_city", "country", "number_of_active_contracts"}, 0)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("Could not fetch company details: %v", err))
		} else if len(companies) > 0 {
			data["company"] = companies[0]
		}
	}

	attachInfo, err := w.dispatcher.Execute(ctx, "contract", agiloft.OpAttachmentInfo, agiloft.Args{
		RecordID: contractID,
		Field:    "attached_file",
	})
	if err != nil {
		data["attachments"] = map[string]any{"count": 0, "note": "No attachments or field not available"}
	} else {
		data["attachments"] = attachInfo.Data
	}

	var healthIssues []string
	if endDateStr := recordString(contract, "contract_end_date"); endDateStr != "" {
		if endDate, parseErr := parseBackendDate(endDateStr); parseErr == nil {
			daysRemaining := int(endDate.Sub(w.now()).Hours() / 24)
			switch {
			case daysRemaining < 0:
				healthIssues = append(healthIssues,
					fmt.Sprintf("Contract EXPIRED %d days ago", -daysRemaining))
			case daysRemaining <= 30:
				healthIssues = append(healthIssues,
					fmt.Sprintf("Contract expires in %d days - URGENT", daysRemaining))
			case daysRemaining <= 90:
				healthIssues = append(healthIssues,
					fmt.Sprintf("Contract expires in %d days - review soon", daysRemaining))
			}
			data["days_remaining"] = daysRemaining
		}
	}
	if contract["contract_amount"] == nil || contract["contract_amount"] == "" {
		healthIssues = append(healthIssues, "Missing contract amount")
	}
	if recordString(contract, "internal_contract_owner") == "" {
		healthIssues = append(healthIssues, "No contract owner assigned")
	}
	if recordString(contract, "date_signed") == "" {
		healthIssues = append(healthIssues, "Contract not yet signed")
	}
	switch status := recordString(contract, "wfstate"); status {
	case "Draft", "Cancelled", "Expired":
		healthIssues = append(healthIssues, fmt.Sprintf("Contract status is '%s'", status))
	}
	if len(healthIssues) > 0 {
		data["health_issues"] = healthIssues
	}

	nextSteps = append(nextSteps,
		"Available actions:\n"+
			"- Update fields: agiloft_update_contract\n"+
			"- Upload attachment: agiloft_attach_file_to_contract\n"+
			"- Download attachment: agiloft_retrieve_attachment_attachment (on the attachment record)\n"+
			"- Trigger action: agiloft_action_button_contract\n"+
			"- View company: agiloft_get_company")

	return workflowResponse(op, data, nextSteps, warnings), nil
}

// ---------------------------------------------------------------------------
// find_expiring_contracts
// ---------------------------------------------------------------------------

func findExpiringContractsTool() mcp.Tool {
	return mcp.Tool{
		Name: "agiloft_find_expiring_contracts",
		Description: "Find contracts expiring within a date range. " +
			"Returns contracts with enriched urgency categories " +
			"(URGENT/UPCOMING/PLANNING) and renewal recommendations.",
		InputSchema: schema(props{
			"days_from_now": props{
				"type":        "integer",
				"description": "Number of days from today to search for expiring contracts",
				"minimum":     1,
				"default":     90,
			},
			"include_expired": props{
				"type":        "boolean",
				"description": "Include already-expired contracts (default false)",
				"default":     false,
			},
			"status_filter": prop("string",
				"Filter by contract status/wfstate (e.g. 'Active'). If omitted, returns all statuses."),
		}),
	}
}

func (w *Workflows) handleFindExpiringContracts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	const op = "find_expiring_contracts"
	raw := req.GetArguments()
	daysFromNow := intArg(raw, "days_from_now", 90)
	includeExpired := boolArg(raw, "include_expired")
	statusFilter := stringArg(raw, "status_filter")

	data := map[string]any{}
	var warnings, nextSteps []string

	now := w.now()
	futureDate := now.AddDate(0, 0, daysFromNow)

	var query string
	if includeExpired {
		query = fmt.Sprintf("contract_end_date<='%s'", futureDate.Format("2006-01-02"))
	} else {
		query = fmt.Sprintf("contract_end_date>='%s' AND contract_end_date<='%s'",
			now.Format("2006-01-02"), futureDate.Format("2006-01-02"))
	}
	if statusFilter != "" {
		query += fmt.Sprintf(" AND wfstate='%s'", statusFilter)
	}

	results, err := w.search(ctx, "contract", query, []string{
		"id", "contract_title1", "company_name", "contract_type",
		"contract_end_date", "contract_amount", "wfstate",
		"auto_renewal_term_in_months", "internal_contract_owner",
	}, 200)
	if err != nil {
		return workflowError(op, err.Error(), nil), nil
	}

	var urgent, upcoming, planning, expired []agiloft.Record
	for _, contract := range results {
		endDateStr := recordString(contract, "contract_end_date")
		if endDateStr == "" {
			continue
		}
		endDate, parseErr := parseBackendDate(endDateStr)
		if parseErr != nil {
			warnings = append(warnings, fmt.Sprintf(
				"Contract %d: could not parse end_date '%s'", contract.ID(), endDateStr))
			continue
		}
		daysRemaining := int(endDate.Sub(now).Hours() / 24)
		contract["days_remaining"] = daysRemaining
		switch {
		case daysRemaining < 0:
			contract["urgency"] = "EXPIRED"
			expired = append(expired, contract)
		case daysRemaining <= 30:
			contract["urgency"] = "URGENT"
			urgent = append(urgent, contract)
		case daysRemaining <= 60:
			contract["urgency"] = "UPCOMING"
			upcoming = append(upcoming, contract)
		default:
			contract["urgency"] = "PLANNING"
			planning = append(planning, contract)
		}
	}

	data["summary"] = map[string]any{
		"total_found":       len(results),
		"urgent_count":      len(urgent),
		"upcoming_count":    len(upcoming),
		"planning_count":    len(planning),
		"expired_count":     len(expired),
		"search_range_days": daysFromNow,
	}
	data["urgent"] = urgent
	data["upcoming"] = upcoming
	data["planning"] = planning
	if includeExpired {
		data["expired"] = expired
	}

	if len(urgent) > 0 {
		nextSteps = append(nextSteps, fmt.Sprintf(
			"%d URGENT contract(s) expiring within 30 days - review immediately with "+
				"agiloft_get_contract_summary.", len(urgent)))
	}
	if len(upcoming) > 0 {
		nextSteps = append(nextSteps, fmt.Sprintf(
			"%d contract(s) expiring in 31-60 days - schedule renewal discussions.", len(upcoming)))
	}
	if len(results) == 0 {
		nextSteps = append(nextSteps, fmt.Sprintf(
			"No contracts expiring within %d days. Try increasing the days_from_now value.", daysFromNow))
	}

	return workflowResponse(op, data, nextSteps, warnings), nil
}

// ---------------------------------------------------------------------------
// onboard_company_with_contact
// ---------------------------------------------------------------------------

func onboardCompanyWithContactTool() mcp.Tool {
	return mcp.Tool{
		Name: "agiloft_onboard_company_with_contact",
		Description: "Onboard a company with an optional primary contact in one operation. " +
			"Checks if the company exists first, creates it if needed, " +
			"then creates the contact linked to the company.",
		InputSchema: schema(props{
			"company_data": props{
				"type":        "object",
				"description": "Company fields. Must include company_name, type_of_company, status.",
				"properties": props{
					"company_name":    prop("string", "Company name (required)"),
					"type_of_company": prop("string", "Type of company (required - e.g. Customer, Vendor)"),
					"status":          prop("string", "Company status (required - e.g. Active)"),
				},
				"additionalProperties": true,
			},
			"contact_data": props{
				"type": "object",
				"description": "Contact fields for the primary contact. company_name will be " +
					"auto-linked. If omitted, only the company is created.",
				"properties": props{
					"first_name": prop("string", "First name"),
					"last_name":  prop("string", "Last name"),
					"email":      prop("string", "Email address"),
					"title":      prop("string", "Job title"),
				},
				"additionalProperties": true,
			},
			"skip_if_exists": props{
				"type": "boolean",
				"description": "If true and company already exists, skip creation and return " +
					"existing record. If false (default), return an error.",
				"default": false,
			},
		}, "company_data"),
	}
}

func (w *Workflows) handleOnboardCompanyWithContact(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	const op = "onboard_company_with_contact"
	raw := req.GetArguments()
	companyData := mapArg(raw, "company_data")
	contactData := mapArg(raw, "contact_data")
	skipIfExists := boolArg(raw, "skip_if_exists")

	companyName, _ := companyData["company_name"].(string)
	if companyName == "" {
		return workflowError(op, "company_data.company_name is required.", nil), nil
	}

	data := map[string]any{}
	var warnings, nextSteps []string

	existing, err := w.search(ctx, "company",
		fmt.Sprintf("company_name='%s'", companyName),
		[]string{"id", "company_name", "type_of_company", "status"}, 0)
	if err != nil {
		return workflowError(op, err.Error(), nil), nil
	}

	if len(existing) > 0 {
		if !skipIfExists {
			return workflowError(op, fmt.Sprintf(
				"Company '%s' already exists (ID: %d). Set skip_if_exists=true to use the "+
					"existing company, or use agiloft_update_company to modify it.",
				companyName, existing[0].ID()),
				map[string]any{"existing_company": existing[0]}), nil
		}
		data["company"] = existing[0]
		data["company_action"] = "already_exists"
		warnings = append(warnings, fmt.Sprintf(
			"Company '%s' already exists (ID: %d). Skipped creation.", companyName, existing[0].ID()))
	} else {
		result, err := w.dispatcher.Execute(ctx, "company", agiloft.OpCreate, agiloft.Args{Data: companyData})
		if err != nil {
			return workflowError(op, err.Error(), data), nil
		}
		data["company"] = result.Data
		data["company_action"] = "created"
	}

	if len(contactData) > 0 {
		createData := map[string]any{}
		for k, v := range contactData {
			createData[k] = v
		}
		// The contacts table links back to the company by name; the relation
		// marker is mandatory there.
		createData["company_name"] = ":" + companyName
		result, err := w.dispatcher.Execute(ctx, "contact", agiloft.OpCreate, agiloft.Args{Data: createData})
		if err != nil {
			return workflowError(op, err.Error(), data), nil
		}
		data["contact"] = result.Data
		data["contact_action"] = "created"
	} else {
		nextSteps = append(nextSteps,
			"No contact was created. Use agiloft_create_contact to add a contact linked to this company.")
	}

	nextSteps = append(nextSteps,
		"Company onboarded. You can now:\n"+
			"- Create a contract: agiloft_create_contract or agiloft_create_contract_with_company\n"+
			"- Add more contacts: agiloft_create_contact")

	return workflowResponse(op, data, nextSteps, warnings), nil
}

// ---------------------------------------------------------------------------
// attach_file_to_contract
// ---------------------------------------------------------------------------

func attachFileToContractTool() mcp.Tool {
	return mcp.Tool{
		Name: "agiloft_attach_file_to_contract",
		Description: "Upload a file attachment to a contract. This is the CORRECT way to attach " +
			"files to contracts: it creates an Attachment record linked to the contract, then " +
			"uploads the file to it. Returns the new attachment ID and file info. " +
			"file_path MUST be an absolute path on the machine running this server. " +
			"If you do not know the local file path, ask the user for it.",
		InputSchema: schema(props{
			"contract_id": props{
				"type":        "integer",
				"description": "The ID of the contract to attach the file to",
				"minimum":     1,
			},
			"file_path": prop("string",
				"REQUIRED. Absolute path to the file on the local filesystem. The server "+
					"reads the file directly from disk. If you don't have the real file path, "+
					"ask the user."),
			"file_name": prop("string",
				"Name for the uploaded file (e.g. 'contract.pdf'). If omitted, uses the "+
					"filename from file_path."),
			"attachment_title": prop("string",
				"Title for the attachment record (optional - defaults to file_name)"),
		}, "contract_id", "file_path"),
	}
}

// Paths that point into a tool-calling agent's sandbox rather than the real
// filesystem the server runs on.
var sandboxPrefixes = []string{"/mnt/", "/home/claude", "/tmp/sandbox", "/sandbox/"}

func (w *Workflows) handleAttachFileToContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	const op = "attach_file_to_contract"
	raw := req.GetArguments()
	contractID := int64(intArg(raw, "contract_id", 0))
	filePath := stringArg(raw, "file_path")
	fileName := stringArg(raw, "file_name")
	attachmentTitle := stringArg(raw, "attachment_title")

	data := map[string]any{}
	var nextSteps []string

	if filePath == "" {
		return workflowError(op,
			"file_path is required. Provide the absolute path to the file on the local "+
				"filesystem. Ask the user for the file path if you don't have it.", nil), nil
	}
	for _, prefix := range sandboxPrefixes {
		if strings.HasPrefix(filePath, prefix) {
			return workflowError(op, fmt.Sprintf(
				"'%s' is a sandbox path, not a real filesystem path. This server runs on "+
					"the local machine and needs the actual file path. Please ask the user "+
					"for the real file location.", filePath), nil), nil
		}
	}

	content, err := os.ReadFile(filePath)
	if err != nil {
		return workflowError(op, fmt.Sprintf(
			"Could not read file %s: %v. Make sure this is the correct absolute path on "+
				"the local filesystem.", filePath, err), nil), nil
	}
	if len(content) == 0 {
		return workflowError(op, "File is empty (0 bytes).", nil), nil
	}

	if fileName == "" {
		fileName = filepath.Base(filePath)
	}
	if attachmentTitle == "" {
		attachmentTitle = fileName
	}

	w.logger.Info("Attaching file to contract",
		"contract_id", contractID,
		"file_name", fileName,
		"file_size", len(content),
	)

	// The contract table has no direct file field. Files are attached by
	// creating an Attachment record linked via contract_title, then uploading
	// into its attached_file field.
	contractResult, err := w.dispatcher.Execute(ctx, "contract", agiloft.OpGet, agiloft.Args{
		RecordID: contractID,
		Fields:   []string{"id", "contract_title1"},
	})
	if err != nil {
		return workflowError(op, err.Error(), nil), nil
	}
	contract, _ := contractResult.Data.(agiloft.Record)
	data["contract"] = contract

	contractTitle := recordString(contract, "contract_title1")
	if contractTitle == "" {
		return workflowError(op, fmt.Sprintf(
			"Contract %d has no title (contract_title1). Cannot link attachment.", contractID), data), nil
	}

	createResult, err := w.dispatcher.Execute(ctx, "attachment", agiloft.OpCreate, agiloft.Args{
		Data: map[string]any{
			"title":           attachmentTitle,
			"status":          "Active",
			"expiration_date": "2099-12-31",
			"contract_title":  contractTitle,
		},
	})
	if err != nil {
		return workflowError(op, err.Error(), data), nil
	}
	data["attachment_record"] = createResult.Data

	attachmentID := extractRecordID(createResult.Data)
	if attachmentID == 0 {
		return workflowError(op, fmt.Sprintf(
			"Created attachment record but could not determine its ID. Response: %v",
			createResult.Data), data), nil
	}
	data["attachment_id"] = attachmentID

	uploadResult, err := w.dispatcher.Execute(ctx, "attachment", agiloft.OpAttachFile, agiloft.Args{
		RecordID:    attachmentID,
		Field:       "attached_file",
		FileName:    fileName,
		FileContent: content,
	})
	if err != nil {
		return workflowError(op, err.Error(), data), nil
	}
	data["upload_result"] = uploadResult.Data

	infoResult, err := w.dispatcher.Execute(ctx, "attachment", agiloft.OpAttachmentInfo, agiloft.Args{
		RecordID: attachmentID,
		Field:    "attached_file",
	})
	if err == nil {
		data["file_info"] = infoResult.Data
	}

	nextSteps = append(nextSteps, fmt.Sprintf(
		"File '%s' attached to contract %d via attachment record %d. You can:\n"+
			"- Download it: agiloft_retrieve_attachment_attachment\n"+
			"- View info: agiloft_get_attachment_info_attachment\n"+
			"- Remove it: agiloft_remove_attachment_attachment",
		fileName, contractID, attachmentID))

	return workflowResponse(op, data, nextSteps, nil), nil
}

// extractRecordID pulls a record ID out of a create response, which the
// backend returns either as a bare number/string or as a record object.
func extractRecordID(payload any) int64 {
	switch v := payload.(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case string:
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0
		}
		return id
	case map[string]any:
		return agiloft.Record(v).ID()
	case agiloft.Record:
		return v.ID()
	default:
		return 0
	}
}

// parseBackendDate parses a backend date value, tolerating a trailing time
// component.
func parseBackendDate(value string) (time.Time, error) {
	if len(value) > 10 {
		value = value[:10]
	}
	return time.Parse("2006-01-02", value)
}
