package shopify

const cartCreateMutation = `
  mutation cartCreate($input: CartInput!) {
    cartCreate(input: $input) {
      cart {
        id
        checkoutUrl
      }
      userErrors {
        field
        message
      }
    }
  }
`

const productFields = `
      id
      title
      handle
      description
      priceRange {
        minVariantPrice {
          amount
          currencyCode
        }
      }
      variants(first: 250) {
        edges {
          node {
            id
            title
            price {
              amount
              currencyCode
            }
            availableForSale
          }
        }
      }
`

const productByHandleQuery = `
  query Product($handle: String!) {
    product(handle: $handle) {` + productFields + `    }
  }
`

const productsQuery = `
  query Products($first: Int!) {
    products(first: $first) {
      edges {
        node {` + productFields + `        }
      }
    }
  }
`
