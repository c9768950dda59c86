package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// ProjectFiles are written by SetupDbtProject, relative to the project root.
var ProjectFiles = map[string]string{
	"models/1_sources/shop/stg_orders.sql": `{{ config(materialized='view') }}

with source as (
    select * from {{ source('shop', 'orders') }}
),

renamed as (
    select
        id as order_id,
        user_id as customer_id,
        status
    from source
)

select * from renamed
`,
	"models/1_sources/shop/stg_customers.sql": `select id as customer_id, name from {{ source('shop', 'customers') }}
`,
	"models/1_sources/shop/stg_customers.yml": "version: 2\n",
	"models/3_dw/dim_customers.sql": `select c.customer_id, c.name, count(o.order_id) as order_count
from {{ ref('stg_customers') }} c
left join {{ ref('stg_orders') }} o on o.customer_id = c.customer_id
group by 1, 2
`,
	"models/4_marts/mart_finance/fct_revenue.sql": `select order_id, amount::number(10, 2) as revenue from {{ ref('stg_orders') }}
`,
	"models/4_marts/mart_sales/fct_orders.sql": `select * from {{ ref('stg_orders') }}
`,
	"documentation/column_level/order_id.md":  "{% docs order_id %}Order key{% enddocs %}\n",
	"documentation/model_level/stg_orders.md": "{% docs stg_orders %}Orders{% enddocs %}\n",
}

// SetupDbtProject creates a temporary dbt project laid out like the default
// config expects and returns its root.
func SetupDbtProject(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	for rel, content := range ProjectFiles {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			t.Fatalf("failed to create directory for %s: %v", rel, err)
		}
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("failed to create %s: %v", rel, err)
		}
	}
	return root
}
