package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			-- Create saved_judgments table
			CREATE TABLE saved_judgments (
				subject_id VARCHAR(255) PRIMARY KEY,
				employee_name VARCHAR(255),
				employee_number VARCHAR(64) NOT NULL,
				birth_date TIMESTAMP WITH TIME ZONE,
				age INTEGER NOT NULL,
				employment_type VARCHAR(64),
				company_id VARCHAR(64),
				office_number VARCHAR(64),
				office_region VARCHAR(16),
				answers JSONB,
				eligibility JSONB NOT NULL,
				saved_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_saved_judgments_employee_number ON saved_judgments(employee_number);
			CREATE INDEX idx_saved_judgments_office_number ON saved_judgments(office_number);
			CREATE INDEX idx_saved_judgments_saved_at ON saved_judgments(saved_at);
		`,
	}
}
