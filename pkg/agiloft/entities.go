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

package agiloft

// DefaultRegistry returns the registry of built-in entities. To expose a new
// Agiloft table, add a descriptor here; no other code changes are needed.
func DefaultRegistry() (*Registry, error) {
	return NewRegistry(
		contractEntity(),
		companyEntity(),
		attachmentEntity(),
		contactEntity(),
		employeeEntity(),
		customerEntity(),
		contractTypeEntity(),
	)
}

// MustDefaultRegistry is DefaultRegistry for process startup, where a
// malformed built-in descriptor is a programming error.
func MustDefaultRegistry() *Registry {
	r, err := DefaultRegistry()
	if err != nil {
		panic(err)
	}
	return r
}

func contractEntity() *Entity {
	return &Entity{
		Key:               "contract",
		KeyPlural:         "contracts",
		Path:              "/contract",
		DisplayName:       "Contract",
		DisplayNamePlural: "Contracts",
		Fields: map[string]Field{
			"record_type":                  {Type: "string", Description: "Contract record type (REQUIRED)"},
			"contract_title1":              {Type: "string", Description: "Contract title"},
			"company_name":                 {Type: "string", Description: "Associated company name (linked field)"},
			"contract_amount":              {Type: "number", Description: "Contract monetary amount"},
			"contract_start_date":          {Type: "string", Description: "Start date (YYYY-MM-DD)"},
			"contract_end_date":            {Type: "string", Description: "End date (YYYY-MM-DD)"},
			"contract_term_in_months":      {Type: "integer", Description: "Term length in months"},
			"internal_contract_owner":      {Type: "string", Description: "Internal contract owner (linked field)"},
			"contract_type":                {Type: "string", Description: "Type of contract, e.g. 'Services Agreement' or 'Non-Disclosure Agreement' (linked field)"},
			"contract_description":         {Type: "string", Description: "Contract description"},
			"contract_comments":            {Type: "string", Description: "Contract comments - use this field for analysis notes, review comments, and observations"},
			"wfstate":                      {Type: "string", Description: "Contract status (workflow state)"},
			"confidential":                 {Type: "string", Description: "Confidentiality level (REQUIRED)"},
			"evaluation_frequency":         {Type: "integer", Description: "Evaluation frequency (REQUIRED)"},
			"auto_renewal_term_in_months":  {Type: "integer", Description: "Auto-renewal term (REQUIRED)"},
			"date_signed":                  {Type: "string", Description: "Date contract was signed"},
			"signer1_email":                {Type: "string", Description: "Primary signer email"},
			"cost_center":                  {Type: "string", Description: "Cost center"},
			"annual_increase":              {Type: "number", Description: "Annual increase percentage"},
		},
		SearchFields: []string{"contract_title1", "company_name"},
		DefaultFields: []string{
			"id", "record_type", "contract_title1", "company_name",
			"contract_amount", "contract_end_date", "internal_contract_owner",
			"date_signed", "wfstate", "contract_type",
		},
		RequiredFields: []string{
			"record_type", "auto_renewal_term_in_months", "confidential", "evaluation_frequency",
		},
		LinkedFields: []string{"company_name", "internal_contract_owner", "contract_type"},
		Operations:   AllOperations,
	}
}

func companyEntity() *Entity {
	return &Entity{
		Key:               "company",
		KeyPlural:         "companies",
		Path:              "/company",
		DisplayName:       "Company",
		DisplayNamePlural: "Companies",
		Fields: map[string]Field{
			"company_name":       {Type: "string", Description: "Company name (REQUIRED)"},
			"type_of_company":    {Type: "string", Description: "Type of company (REQUIRED)"},
			"status":             {Type: "string", Description: "Company status (REQUIRED)"},
			"industry":           {Type: "string", Description: "Industry classification"},
			"parent_company_id":  {Type: "string", Description: "Parent company ID"},
			"main_city":          {Type: "string", Description: "Main office city"},
			"country":            {Type: "string", Description: "Country"},
			"fax":                {Type: "string", Description: "Fax number"},
			"account_rep":        {Type: "string", Description: "Account representative"},
			"main_location_name": {Type: "string", Description: "Main location name"},
			"ongoing_notes":      {Type: "string", Description: "Ongoing notes"},
		},
		SearchFields: []string{"company_name"},
		DefaultFields: []string{
			"id", "company_name", "type_of_company", "status",
			"industry", "main_city", "country", "number_of_active_contracts",
		},
		RequiredFields: []string{"company_name", "type_of_company", "status"},
		Operations:     AllOperations,
	}
}

func attachmentEntity() *Entity {
	return &Entity{
		Key:               "attachment",
		KeyPlural:         "attachments",
		Path:              "/attachment",
		DisplayName:       "Attachment",
		DisplayNamePlural: "Attachments",
		Fields: map[string]Field{
			"title":                      {Type: "string", Description: "Attachment title (REQUIRED)"},
			"status":                     {Type: "string", Description: "Attachment status (REQUIRED)"},
			"attached_file":              {Type: "string", Description: "Attached file reference (REQUIRED)"},
			"expiration_date":            {Type: "string", Description: "Expiration date (REQUIRED)"},
			"attachment_type":            {Type: "string", Description: "Type of attachment"},
			"contract_id":                {Type: "string", Description: "Associated contract ID"},
			"document_source":            {Type: "string", Description: "Document source"},
			"contract_type":              {Type: "string", Description: "Associated contract type"},
			"sorting_order":              {Type: "number", Description: "Display sorting order"},
			"include_in_approval_packet": {Type: "string", Description: "Include in approval packet flag"},
		},
		SearchFields: []string{"title"},
		DefaultFields: []string{
			"id", "title", "status", "attachment_type", "contract_id",
			"expiration_date", "document_source", "sorting_order",
		},
		RequiredFields: []string{"attached_file", "title", "status", "expiration_date"},
		Operations:     AllOperations,
	}
}

func contactEntity() *Entity {
	return &Entity{
		Key:               "contact",
		KeyPlural:         "contacts",
		Path:              "/contacts",
		DisplayName:       "Contact",
		DisplayNamePlural: "Contacts",
		Fields: map[string]Field{
			"first_name":      {Type: "string", Description: "First name"},
			"last_name":       {Type: "string", Description: "Last name"},
			"full_name":       {Type: "string", Description: "Full name"},
			"email":           {Type: "string", Description: "Email address"},
			"company_name":    {Type: "array", Description: "Associated company names"},
			"company_id":      {Type: "string", Description: "Associated company ID"},
			"status":          {Type: "string", Description: "Contact status"},
			"type_of_contact": {Type: "string", Description: "Type of contact"},
			"direct_phone":    {Type: "string", Description: "Direct phone number"},
			"cell_phone":      {Type: "string", Description: "Cell phone number"},
			"title":           {Type: "string", Description: "Job title"},
			"sso_auth_method": {Type: "string", Description: "SSO auth method (REQUIRED)"},
		},
		SearchFields: []string{"full_name", "company_name"},
		DefaultFields: []string{
			"id", "full_name", "email", "company_name", "status",
			"type_of_contact", "direct_phone", "title",
		},
		RequiredFields: []string{"sso_auth_method"},
		Operations:     AllOperations,
	}
}

func employeeEntity() *Entity {
	return &Entity{
		Key:               "employee",
		KeyPlural:         "employees",
		Path:              "/contacts.employees",
		DisplayName:       "Employee",
		DisplayNamePlural: "Employees",
		Fields: map[string]Field{
			"_login":              {Type: "string", Description: "Login username (REQUIRED)"},
			"password":            {Type: "string", Description: "Password (REQUIRED)"},
			"first_name":          {Type: "string", Description: "First name"},
			"last_name":           {Type: "string", Description: "Last name"},
			"full_name":           {Type: "string", Description: "Full name"},
			"email":               {Type: "string", Description: "Email address"},
			"company_name":        {Type: "array", Description: "Associated company names"},
			"status":              {Type: "string", Description: "Contact status"},
			"type_of_contact":     {Type: "string", Description: "Type of contact"},
			"department0":         {Type: "string", Description: "Department"},
			"title":               {Type: "string", Description: "Job title"},
			"sso_auth_method":     {Type: "string", Description: "SSO auth method (REQUIRED)"},
			"preferred_interface": {Type: "string", Description: "Preferred UI interface"},
		},
		SearchFields: []string{"full_name", "company_name"},
		DefaultFields: []string{
			"id", "full_name", "email", "company_name", "status",
			"type_of_contact", "department0", "title", "_login",
		},
		RequiredFields: []string{"_login", "password", "sso_auth_method"},
		Operations:     AllOperations,
	}
}

func customerEntity() *Entity {
	return &Entity{
		Key:               "customer",
		KeyPlural:         "customers",
		Path:              "/contacts.customer",
		DisplayName:       "Customer Contact",
		DisplayNamePlural: "Customer Contacts",
		Fields: map[string]Field{
			"_login":          {Type: "string", Description: "Login username (REQUIRED)"},
			"password":        {Type: "string", Description: "Password (REQUIRED)"},
			"first_name":      {Type: "string", Description: "First name"},
			"last_name":       {Type: "string", Description: "Last name"},
			"full_name":       {Type: "string", Description: "Full name"},
			"email":           {Type: "string", Description: "Email address"},
			"company_name":    {Type: "array", Description: "Associated company names"},
			"status":          {Type: "string", Description: "Contact status"},
			"type_of_contact": {Type: "string", Description: "Type of contact"},
			"title":           {Type: "string", Description: "Job title"},
			"sso_auth_method": {Type: "string", Description: "SSO auth method (REQUIRED)"},
		},
		SearchFields: []string{"full_name", "company_name"},
		DefaultFields: []string{
			"id", "full_name", "email", "company_name", "status",
			"type_of_contact", "title", "_login",
		},
		RequiredFields: []string{"_login", "password", "sso_auth_method"},
		Operations:     AllOperations,
	}
}

func contractTypeEntity() *Entity {
	return &Entity{
		Key:               "contract_type",
		KeyPlural:         "contract_types",
		Path:              "/contract_type",
		DisplayName:       "Contract Type",
		DisplayNamePlural: "Contract Types",
		Fields: map[string]Field{
			"contract_type":               {Type: "string", Description: "Contract type name (REQUIRED)"},
			"party_type":                  {Type: "string", Description: "Party type (REQUIRED)"},
			"uses_tasks":                  {Type: "string", Description: "Uses tasks flag (REQUIRED)"},
			"default_cost_type":           {Type: "string", Description: "Default cost type (REQUIRED)"},
			"default_contract_term_in_months":                {Type: "integer", Description: "Default contract term in months (REQUIRED)"},
			"default_autorenewal_term_in_months":             {Type: "integer", Description: "Default auto-renewal term in months (REQUIRED)"},
			"default_days_in_advance_to_cancel_auto_renewal": {Type: "integer", Description: "Default days in advance to cancel auto-renewal (REQUIRED)"},
			"description":                 {Type: "string", Description: "Contract type description"},
			"status":                      {Type: "string", Description: "Contract type status"},
			"sort_order":                  {Type: "number", Description: "Sort order"},
			"available_for_record_types":  {Type: "string", Description: "Available for record types"},
			"default_renewal_type":        {Type: "string", Description: "Default renewal type (linked field)"},
			"default_workflow_title":      {Type: "string", Description: "Default workflow title (linked field)"},
			"default_task_workflow_title": {Type: "string", Description: "Default task workflow title (linked field)"},
			"default_question_set":        {Type: "string", Description: "Default question set for supplier evaluation (linked field)"},
			"self_serve_available":        {Type: "string", Description: "Self-serve available flag"},
			"enable_ad_hoc_tasks":         {Type: "string", Description: "Enable ad hoc tasks flag"},
			"deleteable":                  {Type: "string", Description: "Deletable flag"},
		},
		SearchFields: []string{"contract_type"},
		DefaultFields: []string{
			"id", "contract_type", "party_type", "status", "description",
			"sort_order", "available_for_record_types", "default_renewal_type",
			"default_contract_term_in_months", "default_workflow_title",
			"self_serve_available", "uses_tasks",
		},
		RequiredFields: []string{
			"contract_type", "party_type", "uses_tasks", "default_cost_type",
			"default_contract_term_in_months", "default_autorenewal_term_in_months",
			"default_days_in_advance_to_cancel_auto_renewal",
		},
		LinkedFields: []string{
			"default_renewal_type", "default_workflow_title",
			"default_task_workflow_title", "default_question_set",
		},
		Operations: AllOperations,
	}
}
